package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	cacheport "backchat/internal/infrastructure/cache/port"
	qport "backchat/internal/infrastructure/queue/port"
	"backchat/internal/infrastructure/realtime"
	httpHandler "backchat/internal/pkg/messaging/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1.
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, cache cacheport.Cache, queue qport.Client, hub *realtime.Hub, log *zap.Logger) {
	v1 := r.Group("/api/v1")
	httpHandler.RegisterRoutes(v1, pool, cache, queue, hub, log)
}
