package main

import (
	"log"

	"github.com/joho/godotenv"

	"optiscope/internal"
	"optiscope/internal/config"
	"optiscope/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(appConfig.LogLevel))

	app, err := ui.NewApp(appConfig, internal.DefaultLogger)
	if err != nil {
		log.Fatalf("Failed to create web app: %v", err)
	}

	log.Printf("optiscope listening on http://localhost:%s", appConfig.Server.Port)
	log.Fatal(app.Start())
}
