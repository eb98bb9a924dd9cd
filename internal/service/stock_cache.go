package service

import (
	"context"
	"fmt"
	"strconv"

	radix "github.com/mediocregopher/radix/v3"

	"github.com/kashaudhan/qp-assessment/internal/datamodels/item"
)

const redisStockKey = "store:stock:%d" // itemID

// StockCacheService 把商品可售数量镜像到 Redis，供高频库存查询使用。
// 数据库是唯一权威，下单事务从不读这份缓存。
type StockCacheService struct {
	itemRepo item.Repository
	redis    radix.Client
}

// NewStockCacheService 创建库存缓存服务
func NewStockCacheService(itemRepo item.Repository, redis radix.Client) *StockCacheService {
	return &StockCacheService{itemRepo: itemRepo, redis: redis}
}

// Get 读取缓存库存；未命中时回源数据库并回填
func (s *StockCacheService) Get(ctx context.Context, itemID int64) (int64, error) {
	key := fmt.Sprintf(redisStockKey, itemID)
	if s.redis != nil {
		var raw string
		if err := s.redis.Do(radix.Cmd(&raw, "GET", key)); err != nil {
			GetMonitor().RecordRedisError()
		} else if raw != "" {
			if stock, err := strconv.ParseInt(raw, 10, 64); err == nil {
				return stock, nil
			}
		}
	}

	it, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return 0, err
	}
	_ = s.Set(ctx, it.ID, it.Stock)
	return it.Stock, nil
}

// Set 回写单个商品的库存
func (s *StockCacheService) Set(ctx context.Context, itemID, stock int64) error {
	if s.redis == nil {
		return nil
	}
	key := fmt.Sprintf(redisStockKey, itemID)
	if err := s.redis.Do(radix.FlatCmd(nil, "SET", key, stock)); err != nil {
		GetMonitor().RecordRedisError()
		return err
	}
	return nil
}

// Refresh 回源数据库刷新指定商品的缓存
func (s *StockCacheService) Refresh(ctx context.Context, itemID int64) error {
	it, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	return s.Set(ctx, it.ID, it.Stock)
}

// SyncAll 全量同步在售商品库存到 Redis，stock-sync 定时任务使用
func (s *StockCacheService) SyncAll(ctx context.Context) (int, error) {
	items, err := s.itemRepo.ListAvailable(ctx)
	if err != nil {
		return 0, err
	}
	synced := 0
	for _, it := range items {
		if err := s.Set(ctx, it.ID, it.Stock); err != nil {
			continue
		}
		synced++
	}
	return synced, nil
}
