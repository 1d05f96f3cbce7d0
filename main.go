package main

import (
	"log"
	"os"
	"pidroid/bot"
	"pidroid/config"
	"pidroid/handlers"
	"pidroid/utils/database"
	"pidroid/utils/database/cases"
	"pidroid/utils/database/guilds"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	if err := cases.CreateTables(db); err != nil {
		log.Fatalf("Error creating case tables: %v", err)
	}
	if err := guilds.CreateTables(db); err != nil {
		log.Fatalf("Error creating guild configuration tables: %v", err)
	}

	b, err := bot.New(cfg, db)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	handlers.Register(b)

	b.Run()

	defer b.Close()
}
