package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kashaudhan/qp-assessment/internal/datamodels/cart"
	"github.com/kashaudhan/qp-assessment/internal/datamodels/item"
	"github.com/kashaudhan/qp-assessment/internal/repository/mysql"
)

// newTestDB 每个测试一个独立的内存库，复用生产的迁移逻辑。
// 单连接即可，sqlite 的写并发本来就是串行的。
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := mysql.Open(sqlite.Open(dsn))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func seedItem(t *testing.T, db *gorm.DB, name string, price, stock int64) *item.Item {
	t.Helper()
	it := &item.Item{Name: name, Price: price, Stock: stock, Category: "grocery"}
	require.NoError(t, db.Create(it).Error)
	return it
}

func addCartLine(t *testing.T, db *gorm.DB, userID, itemID, qty int64) {
	t.Helper()
	require.NoError(t, db.Create(&cart.Line{UserID: userID, ItemID: itemID, Quantity: qty}).Error)
}

func itemStock(t *testing.T, db *gorm.DB, itemID int64) int64 {
	t.Helper()
	var it item.Item
	require.NoError(t, db.First(&it, itemID).Error)
	return it.Stock
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func cartLines(t *testing.T, db *gorm.DB, userID int64) []cart.Line {
	t.Helper()
	var lines []cart.Line
	require.NoError(t, db.Where("user_id = ?", userID).Order("item_id ASC").Find(&lines).Error)
	return lines
}

var testCtx = context.Background()
