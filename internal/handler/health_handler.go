package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/dzakyhdr/learntrack-api/internal/config"
	"github.com/dzakyhdr/learntrack-api/internal/utils"
)

// HealthResponse reports service identity and dependency reachability.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	Database    string    `json:"database"`
}

// HealthCheck returns a liveness handler. The database probe is best effort;
// a failed ping degrades the report instead of returning an error status so
// load balancers keep the instance while the pool recovers.
func HealthCheck(cfg config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Database:    "ok",
		}

		if db != nil {
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Context()) != nil {
				payload.Status = "degraded"
				payload.Database = "unreachable"
			}
		} else {
			payload.Database = "not configured"
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
