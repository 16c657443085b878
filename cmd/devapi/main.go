// Command devapi runs a local marketplace API with the same wire contract
// as the hosted one, so the CLI can be exercised without network access.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"lotmarket/internal/config"
	"lotmarket/internal/models"
	"lotmarket/internal/repository"
	"lotmarket/internal/server"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "devapi: %v\n", err)
		os.Exit(1)
	}
	gin.SetMode(cfg.GinMode)

	repo := repository.NewMemoryRepo()
	prepopulate(repo)

	router := server.SetupRouter(repo, server.DefaultTokenConfig(cfg.Secret))

	addr := fmt.Sprintf(":%d", cfg.Port)
	fmt.Printf("Starting local marketplace API on %s...\n", addr)
	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// prepopulate seeds a demo seller and a few open listings
func prepopulate(repo *repository.MemoryRepo) {
	if _, err := repo.CreateUser("demo_seller", "demo_seller@stud.noroff.no", "demo-password"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed demo profile: %v\n", err)
		os.Exit(1)
	}

	listings := []models.Listing{
		{Title: "Vintage record player", Description: "Fully working, one careful owner.", EndsAt: time.Now().Add(72 * time.Hour)},
		{Title: "Mountain bike", Description: "Hardtail, recently serviced.", EndsAt: time.Now().Add(24 * time.Hour)},
		{Title: "Box of paperbacks", Description: "Around forty novels, mixed genres.", EndsAt: time.Now().Add(6 * time.Hour)},
	}

	for _, listing := range listings {
		if _, err := repo.CreateListing("demo_seller", listing); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to seed listing: %v\n", err)
			os.Exit(1)
		}
	}
}
