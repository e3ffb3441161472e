// Command main seeds the folio database with the admin account and, on
// request, demo content.
package main

import (
	"context"
	"flag"
	"log"

	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/middleware"
	"folio/internal/seed"
)

func main() {
	demo := flag.Bool("demo", false, "Create demo users, posts and projects")
	numUsers := flag.Int("users", 5, "Number of demo users")
	postsPerUser := flag.Int("posts", 4, "Posts per demo user")
	projectsPerUser := flag.Int("projects", 2, "Projects per demo user")
	seedValue := flag.Int64("seed", 0, "Random seed for reproducible demo content (0 = random)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.InitLogger(cfg.Env, "")

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()

	if cfg.AdminEmail != "" {
		created, err := seed.Admin(ctx, db, seed.AdminOptions{
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
			Cost:     cfg.AdminBcryptCost,
		})
		if err != nil {
			log.Fatalf("Admin seeding failed: %v", err)
		}
		if created {
			log.Printf("Admin account %s created", cfg.AdminEmail)
		}
	} else {
		log.Println("ADMIN_EMAIL not set, skipping admin account")
	}

	if !*demo {
		return
	}

	res, err := seed.NewFactory(db, seed.DemoOptions{
		Users:           *numUsers,
		PostsPerUser:    *postsPerUser,
		ProjectsPerUser: *projectsPerUser,
		Seed:            *seedValue,
	}).Demo(ctx)
	if err != nil {
		log.Fatalf("Demo seeding failed: %v", err)
	}

	log.Printf("Created %d users, %d posts, %d projects", res.Users, res.Posts, res.Projects)
	log.Printf("All demo users have the password: %s", seed.DemoPassword)
}
