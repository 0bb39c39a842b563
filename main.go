package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/trashure/api-go/config"
	"github.com/trashure/api-go/routes"
	"github.com/trashure/api-go/services"
	"github.com/trashure/api-go/types"
)

func main() {
	// Set up logging to stdout
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Initialize database
	db := config.InitDB()

	economy := types.GetEconomyConfig()

	// Periodic sweep for overdue pending trade offers. Lazy expiry on the
	// read/accept paths keeps correctness even if this loop falls behind.
	ledger := services.NewLedgerService(economy)
	trades := services.NewTradeService(db, ledger, economy)
	go func() {
		ticker := time.NewTicker(economy.SweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			expired, err := trades.ExpireStale()
			if err != nil {
				log.Printf("trade offer sweep failed: %v", err)
				continue
			}
			if expired > 0 {
				log.Printf("trade offer sweep expired %d offers", expired)
			}
		}
	}()

	// Create a new Gin router
	r := gin.Default()

	// Add logging middleware
	r.Use(gin.LoggerWithWriter(os.Stdout))

	// Initialize routes
	routes.SetupRoutes(r, db)

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting server on port %s", port)
	r.Run(":" + port)
}
