package pairkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinIsOrderIndependent(t *testing.T) {
	assert.Equal(t, Join("u1", "u2"), Join("u2", "u1"))
	assert.Equal(t, "u1_u2", Join("u2", "u1"))
}

func TestJoinSortsLexically(t *testing.T) {
	assert.Equal(t, "abc_zzz", Join("zzz", "abc"))
}

func TestJoinEscapesSeparatorInsideIDs(t *testing.T) {
	// "a_b" + "c" must not collide with "a" + "b_c".
	assert.NotEqual(t, Join("a_b", "c"), Join("a", "b_c"))
}

func TestJoinEscapesEscapeCharacter(t *testing.T) {
	// An id containing a literal "%5F" must not collide with one
	// containing "_".
	assert.NotEqual(t, Join("a%5Fb", "c"), Join("a_b", "c"))
}

func TestJoinPlainIDsKeepPlainForm(t *testing.T) {
	assert.Equal(t, "alice_bob", Join("bob", "alice"))
}
