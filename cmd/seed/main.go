package main

import (
	"log"
	"time"

	"plant-journal-be/internal/config"
	"plant-journal-be/internal/model"
	"plant-journal-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a demo account with a handful of discoveries, for local frontend
// work without burning vision API calls.
func main() {
	cfg := config.Load()

	db, err := database.NewGormDB(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database: ", err)
	}

	color.Cyan("🌱 Seeding demo journal data")

	demoEmail := "demo@plantjournal.local"
	var user model.User
	if err := db.Where("email = ?", demoEmail).First(&user).Error; err != nil {
		hash, _ := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
		user = model.User{
			Id:           uuid.New(),
			Email:        demoEmail,
			FullName:     "Demo Explorer",
			PasswordHash: string(hash),
		}
		if err := db.Create(&user).Error; err != nil {
			color.Red("Failed to create demo user: %v", err)
			return
		}
		color.Green("Created demo user: %s", demoEmail)
	} else {
		color.Yellow("Demo user already exists, reusing")
	}

	now := time.Now().UnixMilli()
	discoveries := []model.Discovery{
		{Name: "Common Daisy", Fact: "Daisies close their petals at night and reopen at dawn.", Category: "Flower", ImagePath: "uploads/demo/daisy.jpg", CapturedAt: now - 3*86400000},
		{Name: "Seven-spot Ladybird", Fact: "A single ladybird can eat over 5000 aphids in its lifetime.", Category: "Insect", ImagePath: "uploads/demo/ladybird.jpg", CapturedAt: now - 2*86400000},
		{Name: "English Oak", Fact: "Oaks can live for more than a thousand years.", Category: "Tree", ImagePath: "uploads/demo/oak.jpg", CapturedAt: now - 86400000},
		{Name: "Garden Mint", Fact: "Mint spreads through underground runners and can quickly take over a bed.", Category: "Plant", ImagePath: "uploads/demo/mint.jpg", CapturedAt: now},
	}

	for _, d := range discoveries {
		var existing model.Discovery
		if err := db.Where("owner_id = ? AND name = ?", user.Id.String(), d.Name).First(&existing).Error; err == nil {
			color.Yellow("'%s' already seeded, skipping", d.Name)
			continue
		}

		d.Id = uuid.New()
		d.OwnerId = user.Id.String()
		d.CreatedAt = d.CapturedAt
		if err := db.Create(&d).Error; err != nil {
			color.Red("Error seeding '%s': %v", d.Name, err)
		} else {
			color.Green("Seeded discovery: %s (%s)", d.Name, d.Category)
		}
	}

	color.Cyan("Seeding completed")
}
