package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/kashaudhan/qp-assessment/internal/config"
	"github.com/kashaudhan/qp-assessment/internal/datamodels/item"
	"github.com/kashaudhan/qp-assessment/internal/infra/log"
	"github.com/kashaudhan/qp-assessment/internal/repository/mysql"
	"github.com/kashaudhan/qp-assessment/internal/service"
)

// 开发用：灌一批测试商品和一个初始管理员
func main() {
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		panic(err)
	}

	log.InitLogger()

	db := mysql.Init(&cfg.MySQL)
	itemRepo := mysql.NewItemRepository(db)
	accountRepo := mysql.NewAccountRepository(db)
	itemSvc := service.NewItemService(itemRepo)
	accountSvc := service.NewAccountService(accountRepo, &cfg.JWT, cfg.Auth.BcryptCost)

	ctx := context.Background()

	items := []*item.Item{
		{Name: "Basmati Rice 5kg", Price: 129900, Stock: 40, Category: "grocery"},
		{Name: "Whole Wheat Flour 10kg", Price: 45000, Stock: 60, Category: "grocery"},
		{Name: "Sunflower Oil 1L", Price: 18900, Stock: 120, Category: "grocery"},
		{Name: "Toor Dal 1kg", Price: 16500, Stock: 80, Category: "grocery"},
		{Name: "Green Tea 100 bags", Price: 29900, Stock: 50, Category: "beverages"},
		{Name: "Filter Coffee 500g", Price: 38000, Stock: 35, Category: "beverages"},
		{Name: "Dish Soap 750ml", Price: 9900, Stock: 200, Category: "household"},
		{Name: "Laundry Detergent 2kg", Price: 42500, Stock: 90, Category: "household"},
	}
	if err := itemSvc.CreateBatch(ctx, items); err != nil {
		zap.L().Fatal("seed items failed", zap.Error(err))
	}
	zap.L().Info("seeded items", zap.Int("count", len(items)))

	if _, err := accountSvc.CreateAdmin(ctx, "admin@store.local", "admin12345"); err != nil {
		// 重复执行时管理员已存在，不算失败
		zap.L().Warn("seed admin skipped", zap.Error(err))
	} else {
		zap.L().Info("seeded admin account", zap.String("email", "admin@store.local"))
	}
}
