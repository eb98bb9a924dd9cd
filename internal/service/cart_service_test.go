package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashaudhan/qp-assessment/internal/datamodels/item"
	"github.com/kashaudhan/qp-assessment/internal/repository/mysql"
	"github.com/kashaudhan/qp-assessment/internal/service"
)

func TestAddToCartUpsert(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewCartService(mysql.NewCartRepository(db), mysql.NewItemRepository(db))

	it := seedItem(t, db, "Milk", 5500, 20)
	const userID = int64(1)

	require.NoError(t, svc.AddToCart(testCtx, userID, it.ID, 2))
	// 重复加购同一商品，数量累加而不是另起一行
	require.NoError(t, svc.AddToCart(testCtx, userID, it.ID, 3))

	lines := cartLines(t, db, userID)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(5), lines[0].Quantity)
}

func TestAddToCartRejectsBadInput(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewCartService(mysql.NewCartRepository(db), mysql.NewItemRepository(db))

	it := seedItem(t, db, "Bread", 3000, 10)

	err := svc.AddToCart(testCtx, 1, it.ID, 0)
	require.ErrorIs(t, err, service.ErrInvalidCartLine)

	err = svc.AddToCart(testCtx, 1, it.ID, -2)
	require.ErrorIs(t, err, service.ErrInvalidCartLine)

	// 不存在的商品
	err = svc.AddToCart(testCtx, 1, it.ID+999, 1)
	require.ErrorIs(t, err, service.ErrItemsNotFound)

	assert.Empty(t, cartLines(t, db, 1))
}

func TestAddToCartRejectsSoftDeletedItem(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewCartService(mysql.NewCartRepository(db), mysql.NewItemRepository(db))

	it := seedItem(t, db, "Pulled", 1000, 5)
	require.NoError(t, db.Model(&item.Item{}).Where("id = ?", it.ID).Update("is_deleted", true).Error)

	err := svc.AddToCart(testCtx, 1, it.ID, 1)
	require.ErrorIs(t, err, service.ErrItemsNotFound)
}

func TestGetCart(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewCartService(mysql.NewCartRepository(db), mysql.NewItemRepository(db))

	a := seedItem(t, db, "Rice", 12000, 30)
	b := seedItem(t, db, "Oil", 18900, 15)
	const userID = int64(2)
	require.NoError(t, svc.AddToCart(testCtx, userID, a.ID, 2))
	require.NoError(t, svc.AddToCart(testCtx, userID, b.ID, 1))

	details, err := svc.GetCart(testCtx, userID)
	require.NoError(t, err)
	require.Len(t, details, 2)

	byID := map[int64]int64{}
	for _, d := range details {
		byID[d.ItemID] = d.Subtotal
	}
	assert.Equal(t, int64(24000), byID[a.ID])
	assert.Equal(t, int64(18900), byID[b.ID])
}

func TestGetCartEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewCartService(mysql.NewCartRepository(db), mysql.NewItemRepository(db))

	details, err := svc.GetCart(testCtx, 99)
	require.NoError(t, err)
	assert.Empty(t, details)
}

func TestGetCartBrokenIntegrity(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewCartService(mysql.NewCartRepository(db), mysql.NewItemRepository(db))

	it := seedItem(t, db, "Doomed", 1000, 5)
	const userID = int64(3)
	require.NoError(t, svc.AddToCart(testCtx, userID, it.ID, 1))

	// 商品被物理删除后，购物车明细必须报错而不是悄悄丢行
	require.NoError(t, db.Exec("DELETE FROM items WHERE id = ?", it.ID).Error)

	_, err := svc.GetCart(testCtx, userID)
	require.ErrorIs(t, err, service.ErrItemsNotFound)
}
