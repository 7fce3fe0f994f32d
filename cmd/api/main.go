package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"oftisoft/internal/adapter/api"
	"oftisoft/internal/adapter/api/handler"
	apimiddleware "oftisoft/internal/adapter/api/middleware"
	"oftisoft/internal/adapter/api/router"
	"oftisoft/internal/adapter/repository"
	"oftisoft/internal/infrastructure/websocket"
	"oftisoft/internal/usecase"
	"oftisoft/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opts []option.ClientOption
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(serviceAccountJSON)))
	} else if serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); serviceAccountPath != "" {
		opts = append(opts, option.WithCredentialsFile(serviceAccountPath))
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	conversationRepo := repository.NewFirestoreConversationRepository(firestoreClient)
	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	formRepo := repository.NewFirestoreFormRepository(firestoreClient)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	chatUseCase := usecase.NewChatUseCase(conversationRepo, userRepo)
	userUseCase := usecase.NewUserUseCase(userRepo)
	formUseCase := usecase.NewFormUseCase(formRepo)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)

	chatHandler := handler.NewChatHandler(chatUseCase, userUseCase)
	userHandler := handler.NewUserHandler(userUseCase)
	formHandler := handler.NewFormHandler(formUseCase)
	wsHandler := handler.NewWebSocketHandler(wsManager, authMiddleware, chatUseCase, userUseCase)
	healthHandler := handler.NewHealthHandler(wsManager)

	router.SetupHealthRouter(e, healthHandler)
	router.SetupChatRouter(e, chatHandler, authMiddleware)
	router.SetupUserRouter(e, userHandler, authMiddleware)
	router.SetupFormRouter(e, formHandler)
	router.SetupWebSocketRouter(e, wsHandler)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
