package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/sei-backend/internal/response"
)

// HealthHandler reports liveness and Redis reachability.
type HealthHandler struct {
	rdb     *redis.Client
	started time.Time
}

// NewHealthHandler creates a new HealthHandler. rdb may be nil.
func NewHealthHandler(rdb *redis.Client) *HealthHandler {
	return &HealthHandler{rdb: rdb, started: time.Now()}
}

// Health godoc
// GET /health
// Always 200 while the process serves traffic; "redis" degrades independently.
func (h *HealthHandler) Health(c *gin.Context) {
	redisStatus := "disabled"
	if h.rdb != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		redisStatus = "ok"
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			redisStatus = "unreachable"
		}
	}

	response.Success(c, http.StatusOK, gin.H{
		"status": "ok",
		"redis":  redisStatus,
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}
