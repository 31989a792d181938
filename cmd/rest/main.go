package main

import (
	"context"
	"log"

	"plant-journal-be/internal/bootstrap"
	"plant-journal-be/internal/config"
	"plant-journal-be/internal/server"
	"plant-journal-be/internal/tracer"
	"plant-journal-be/pkg/database"
)

func main() {
	// 0. Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Configuration
	cfg := config.Load()

	// 2. Database
	gormDB, err := database.NewGormDB(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap dependencies
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Serve
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
