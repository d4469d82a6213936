package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	cacheAdapter "backchat/internal/infrastructure/cache/adapter"
	cacheport "backchat/internal/infrastructure/cache/port"
	"backchat/internal/infrastructure/database"
	queueAdapter "backchat/internal/infrastructure/queue/adapter"
	"backchat/internal/infrastructure/realtime"
	"backchat/internal/pkg/messaging/application/task"

	v1 "backchat/cmd/api/router/v1"
)

func main() {
	// A missing .env is fine in containerized deployments.
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	pool, err := database.NewPoolFromEnv(ctx)
	cancel()
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	defer pool.Close()

	// Redis backs both the cache and the notification queue. If it is down at
	// boot the service still starts: caching degrades to an in-process map.
	var cache cacheport.Cache
	if redisCache, err := cacheAdapter.NewRedisAdapter(); err != nil {
		logger.Warn("redis unavailable, using in-process cache", zap.Error(err))
		cache = cacheAdapter.NewMemoryAdapter()
	} else {
		cache = redisCache
	}
	defer cache.Close()

	queueClient, err := queueAdapter.NewAsynqClientFromEnv()
	if err != nil {
		logger.Fatal("queue client init failed", zap.Error(err))
	}
	defer queueClient.Close()

	hub := realtime.NewHub()

	// Run the notification worker loop in-process.
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	server, err := queueAdapter.NewAsynqServer(logger)
	if err != nil {
		logger.Fatal("queue server init failed", zap.Error(err))
	}
	task.RegisterNotifyTask(server, hub, logger)
	go func() {
		if err := server.Run(workerCtx); err != nil {
			logger.Error("worker loop exited", zap.Error(err))
		}
	}()

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	v1.RegisterRoutes(r, pool, cache, queueClient, hub, logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{Addr: ":" + port, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()
	logger.Info("listening", zap.String("port", port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	stopWorker()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}
