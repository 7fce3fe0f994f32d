// Package pairkey derives stable conversation identifiers for unordered
// pairs of user ids. The same two ids always produce the same key, no
// matter which side computes it, so concurrent conversation bootstraps
// from both parties converge on a single document.
package pairkey

import "strings"

const separator = "_"

var escaper = strings.NewReplacer("%", "%25", "_", "%5F")

// Join returns the canonical conversation id for the unordered pair {a, b}.
// The two ids are sorted lexically and joined with "_". Separator and escape
// characters inside an id are percent-escaped first, so ids containing "_"
// cannot collide with a different pair. Ids without either character keep
// the plain "a_b" form.
func Join(a, b string) string {
	ea, eb := escaper.Replace(a), escaper.Replace(b)
	if ea > eb {
		ea, eb = eb, ea
	}
	return ea + separator + eb
}
