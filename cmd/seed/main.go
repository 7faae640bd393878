// Command main runs the database seeder for Inkwell.
package main

import (
	"context"
	"flag"
	"log"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numBlogs := flag.Int("blogs", 200, "Number of blogs to create")
	maxDays := flag.Int("max-days", 90, "Spread created timestamps over this many days")
	shouldClean := flag.Bool("clean", true, "Clean collections before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d blogs, clean=%v\n", *numUsers, *numBlogs, *shouldClean)

	// Local development keeps connection settings in a .env file.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	ctx := context.Background()
	defer db.Close(ctx)

	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	seeder := seed.NewSeeder(db, seed.Options{
		NumUsers:    *numUsers,
		NumBlogs:    *numBlogs,
		MaxDays:     *maxDays,
		ShouldClean: *shouldClean,
	})
	if err := seeder.Seed(ctx); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
