package mysql

import (
	"log"
	"sync"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/kashaudhan/qp-assessment/internal/config"
	"github.com/kashaudhan/qp-assessment/internal/datamodels/account"
	"github.com/kashaudhan/qp-assessment/internal/datamodels/cart"
	"github.com/kashaudhan/qp-assessment/internal/datamodels/item"
	"github.com/kashaudhan/qp-assessment/internal/datamodels/order"
)

var (
	db   *gorm.DB
	once sync.Once
)

// Init 初始化全局 GORM 实例并自动迁移表结构
func Init(cfg *config.MySQLConfig) *gorm.DB {
	once.Do(func() {
		var err error
		db, err = Open(mysql.Open(cfg.DSN))
		if err != nil {
			log.Fatalf("failed to connect mysql: %v", err)
		}
	})
	return db
}

// Open 按给定方言打开数据库并迁移表结构，测试里注入 sqlite 方言复用同一套迁移
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err = gdb.AutoMigrate(&account.Account{}, &item.Item{}, &cart.Line{}, &order.Order{}, &order.Line{}); err != nil {
		return nil, err
	}
	return gdb, nil
}

// DB 获取全局 DB
func DB() *gorm.DB {
	return db
}
