package main

import (
	"log"
	"os"

	"github.com/GenanawMekete/final-bingo/config"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, reading environment variables")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("[FATAL] DATABASE_URL is required")
	}

	config.SetupDatabase(dsn)
}
