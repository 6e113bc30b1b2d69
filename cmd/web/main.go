package main

import (
	"dealercrm_backend/internal/app"

	"github.com/joho/godotenv"
)

func main() {
	// Missing .env is fine; containers pass real environment variables.
	_ = godotenv.Load()

	app.Run()
}
