package root

import (
	"claudecode-es/backend/internal"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Health pings the store and the database. The database is optional and
// reported as disabled when it isn't configured.
func Health(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{
		"store":    "ok",
		"database": "disabled",
	}

	if err := d.Store.Ping(ctx); err != nil {
		status = http.StatusServiceUnavailable
		checks["store"] = "error"

		zap.L().Error("Store health check failed", zap.Error(err), zap.String("requestID", requestID))
	}

	if d.DB != nil {
		checks["database"] = "ok"

		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}

		if err != nil {
			status = http.StatusServiceUnavailable
			checks["database"] = "error"

			zap.L().Error("Database health check failed", zap.Error(err), zap.String("requestID", requestID))
		}
	}

	s := "ok"
	if status != http.StatusOK {
		s = "degraded"
	}

	c.JSON(status, gin.H{
		"status": s,
		"checks": checks,
	})
}
