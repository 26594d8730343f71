package main

import (
	"context"
	"log"

	"ai-consultancy-be/internal/bootstrap"
	"ai-consultancy-be/internal/config"
	"ai-consultancy-be/internal/server"
	"ai-consultancy-be/internal/tracer"
	"ai-consultancy-be/pkg/database"
)

func main() {
	// 0. Initialize tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load configuration
	cfg := config.Load()

	// 2. Initialize database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap dependencies
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start the change feed consumer
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 5. Run server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
