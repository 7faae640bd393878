// Command main creates the MongoDB indexes the application relies on.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout for index creation")
	flag.Parse()

	// Local development keeps connection settings in a .env file.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	defer db.Close(context.Background())

	if err := db.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	log.Println("indexes created")
	return nil
}
