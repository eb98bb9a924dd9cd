package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kashaudhan/qp-assessment/internal/config"
	"github.com/kashaudhan/qp-assessment/internal/infra/log"
	"github.com/kashaudhan/qp-assessment/internal/infra/redis"
	"github.com/kashaudhan/qp-assessment/internal/repository/mysql"
	"github.com/kashaudhan/qp-assessment/internal/service"
)

const syncInterval = 5 * time.Minute // 每5分钟全量同步一次

func main() {
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		panic(err)
	}

	log.InitLogger()

	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)

	itemRepo := mysql.NewItemRepository(db)
	stockCache := service.NewStockCacheService(itemRepo, redisClient)

	zap.L().Info("stock sync started", zap.Duration("interval", syncInterval))

	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()

	// 启动时立即同步一次，数据库是唯一权威
	syncOnce(stockCache)

	for range ticker.C {
		syncOnce(stockCache)
	}
}

func syncOnce(stockCache *service.StockCacheService) {
	synced, err := stockCache.SyncAll(context.Background())
	if err != nil {
		zap.L().Error("stock sync failed", zap.Error(err))
		return
	}
	zap.L().Info("stock sync done", zap.Int("synced", synced))
}
