package main

import (
	"log"

	"plant-journal-be/internal/config"
	"plant-journal-be/internal/model"
	"plant-journal-be/pkg/database"
)

func main() {
	cfg := config.Load()

	db, err := database.NewGormDB(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database: ", err)
	}

	log.Println("Running GORM AutoMigrate...")

	models := []interface{}{
		&model.User{},
		&model.Discovery{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatal("Error: AutoMigrate failed: ", err)
	}

	log.Println("✅ Migration complete")
}
