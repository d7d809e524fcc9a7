package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"campaign-shop/internal/adapter/handler"
	"campaign-shop/internal/adapter/storage"
	"campaign-shop/internal/core/service"
	"campaign-shop/internal/port"
)

type config struct {
	HTTPAddr           string `env:"HTTP_ADDR" envDefault:":8080"`
	MySQLDSN           string `env:"MYSQL_DSN" envDefault:"root:root@tcp(localhost:3306)/campaignshop?parseTime=true"`
	RedisAddr          string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	WorkerCount        int    `env:"WORKER_COUNT" envDefault:"4"`
	QueueSize          int    `env:"QUEUE_SIZE" envDefault:"1024"`
	SellPayoutPercent  int    `env:"SELL_PAYOUT_PERCENT" envDefault:"100"`
	GameMasterOverride bool   `env:"GM_OVERRIDE" envDefault:"true"`
}

func main() {
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("failed to open mysql", zap.Error(err))
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("failed to ping mysql", zap.Error(err))
	}
	logger.Info("connected to mysql")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	logger.Info("connected to redis")

	// Initialize adapters and service
	redisAdapter := storage.NewRedisAdapter(rdb)
	mysqlAdapter := storage.NewMySQLAdapter(db)

	tradeService := service.NewTradeService(mysqlAdapter, redisAdapter, logger, service.Config{
		SellPayoutPercent:  cfg.SellPayoutPercent,
		GameMasterOverride: cfg.GameMasterOverride,
	}, cfg.QueueSize)

	// Start cache-refresh workers
	var wg sync.WaitGroup
	for i := 0; i < cfg.WorkerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			refreshLoop(id, tradeService.RefreshQueue(), redisAdapter, logger)
		}(i)
	}
	logger.Info("started cache-refresh workers", zap.Int("count", cfg.WorkerCount))

	// Initialize HTTP server
	router := gin.New()
	router.Use(gin.Recovery())
	tradeHandler := handler.NewTradeHandler(tradeService, redisAdapter, logger)
	tradeHandler.RegisterRoutes(router)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("HTTP server stopped")

	// Close the refresh queue and wait for workers
	tradeService.Close()
	wg.Wait()
	logger.Info("workers stopped")

	rdb.Close()
	db.Close()
	logger.Info("connections closed")
}

// refreshLoop drops stale cached listing views after committed trades.
func refreshLoop(id int, queue <-chan string, cache port.CacheRepository, logger *zap.Logger) {
	for listingID := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		if err := cache.InvalidateListing(ctx, listingID); err != nil {
			logger.Warn("failed to invalidate listing cache",
				zap.Int("worker", id),
				zap.String("listing_id", listingID),
				zap.Error(err),
			)
		}

		cancel()
	}
}
