package health

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Handlers struct {
	DB  *gorm.DB
	Rdb *redis.Client
}

// JSON returns overall service health with dependency ping statuses.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	deps := fiber.Map{
		"database": pingDB(ctx, h.DB),
		"redis":    pingRedis(ctx, h.Rdb),
	}
	status := "ok"
	for _, v := range deps {
		if v != "up" {
			status = "degraded"
		}
	}
	return c.JSON(fiber.Map{
		"service":      "gatherly-api",
		"status":       status,
		"dependencies": deps,
	})
}

func pingDB(ctx context.Context, db *gorm.DB) string {
	if db == nil {
		return "not configured"
	}
	sqlDB, err := db.DB()
	if err != nil {
		return "down"
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return "down"
	}
	return "up"
}

func pingRedis(ctx context.Context, rdb *redis.Client) string {
	if rdb == nil {
		return "not configured"
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		return "down"
	}
	return "up"
}
