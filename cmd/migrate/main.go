package main

import (
	"log"
	"os"

	"ai-consultancy-be/internal/model"
	"ai-consultancy-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to database
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM migration...")

	// 3. Extensions GORM AutoMigrate does not handle
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate models
	if err := db.AutoMigrate(&model.ConsultSession{}); err != nil {
		log.Fatal("Error: AutoMigrate failed:", err)
	}

	log.Println("Migration completed successfully.")
}
