package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yeremiapane/restaurant-pos/config"
	"github.com/yeremiapane/restaurant-pos/database"
	"github.com/yeremiapane/restaurant-pos/middlewares"
	"github.com/yeremiapane/restaurant-pos/realtime"
	"github.com/yeremiapane/restaurant-pos/router"
	"github.com/yeremiapane/restaurant-pos/utils"
)

func main() {
	utils.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	utils.SetJWTSecret(cfg.JWTSecret)

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}

	generated := ensureAdminPassword(cfg)
	created, err := database.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed admin: %v", err)
	}
	if created {
		utils.InfoLogger.Printf("Bootstrap admin %s created, change its password after first login", cfg.AdminEmail)
		if generated {
			// Printed once to the terminal, outside the info log.
			fmt.Fprintf(os.Stderr, "WARNING: ADMIN_PASSWORD is not set, generated password for %s: %s\n",
				cfg.AdminEmail, cfg.AdminPassword)
		}
	}

	if cfg.AMQPURL != "" {
		mirror, err := realtime.NewAMQPMirror(cfg.AMQPURL, realtime.DefaultExchange)
		if err != nil {
			utils.ErrorLogger.Printf("Event mirror disabled, cannot reach broker: %v", err)
		} else {
			defer mirror.Close()
			realtime.Default().SetMirror(mirror)
		}
	}

	r, rateLimiter := router.SetupRouter(db, cfg)
	go housekeeping(rateLimiter)

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

// ensureAdminPassword fills in a random bootstrap password when none is
// configured and reports whether it did.
func ensureAdminPassword(cfg *config.Config) bool {
	if cfg.AdminPassword != "" {
		return false
	}
	cfg.AdminPassword = uuid.NewString()[:12]
	return true
}

// housekeeping drops expired revoked tokens and idle rate limiter entries.
func housekeeping(rl *middlewares.RateLimiter) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		if n := utils.CleanupBlacklist(); n > 0 {
			utils.InfoLogger.Printf("Removed %d expired tokens from blacklist", n)
		}
		rl.Cleanup(30 * time.Minute)
	}
}
