package main

import (
	"context"
	"net/http"
	"os"

	"movi/internal/container"
	"movi/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	logger.Init()
	log := logger.Get()

	err := godotenv.Load(".env.local")
	if err != nil {
		log.Info("No .env file found, using system environment variables")
	}

	ctx := context.Background()
	app, err := container.New(ctx)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer app.Close(ctx)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Infof("API listening on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, app.Router))
}
