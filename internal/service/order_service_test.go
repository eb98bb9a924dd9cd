package service_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kashaudhan/qp-assessment/internal/config"
	"github.com/kashaudhan/qp-assessment/internal/datamodels/item"
	"github.com/kashaudhan/qp-assessment/internal/datamodels/order"
	"github.com/kashaudhan/qp-assessment/internal/repository/mysql"
	"github.com/kashaudhan/qp-assessment/internal/service"
)

func newOrderService(db *gorm.DB, strict bool) *service.OrderService {
	return service.NewOrderService(db, mysql.NewOrderRepository(db), nil, &config.OrderConfig{StrictStock: strict})
}

func TestPlaceOrder(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db, false)

	// 购物车：A 单价10分 x2，B 单价5分 x1；库存 A=5，B=3
	a := seedItem(t, db, "Item A", 10, 5)
	b := seedItem(t, db, "Item B", 5, 3)
	const userID = int64(1)
	addCartLine(t, db, userID, a.ID, 2)
	addCartLine(t, db, userID, b.ID, 1)

	placed, err := svc.PlaceOrder(testCtx, userID)
	require.NoError(t, err)
	require.NotNil(t, placed)

	assert.Equal(t, int64(25), placed.Amount)
	assert.NotEmpty(t, placed.OrderNo)
	assert.Equal(t, int64(3), itemStock(t, db, a.ID))
	assert.Equal(t, int64(2), itemStock(t, db, b.ID))
	assert.Empty(t, cartLines(t, db, userID))

	// 订单行是下单瞬间的快照
	var lines []order.Line
	require.NoError(t, db.Where("order_id = ?", placed.OrderID).Order("item_id ASC").Find(&lines).Error)
	require.Len(t, lines, 2)
	assert.Equal(t, "Item A", lines[0].ItemName)
	assert.Equal(t, int64(10), lines[0].ItemPrice)
	assert.Equal(t, int64(2), lines[0].Quantity)
	assert.Equal(t, "Item B", lines[1].ItemName)
	assert.Equal(t, int64(5), lines[1].ItemPrice)
	assert.Equal(t, int64(1), lines[1].Quantity)

	// 快照与后续商品变更无关
	require.NoError(t, db.Model(&item.Item{}).Where("id = ?", a.ID).
		Updates(map[string]interface{}{"name": "Renamed", "price": 999}).Error)
	var frozen order.Line
	require.NoError(t, db.Where("order_id = ? AND item_id = ?", placed.OrderID, a.ID).First(&frozen).Error)
	assert.Equal(t, "Item A", frozen.ItemName)
	assert.Equal(t, int64(10), frozen.ItemPrice)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db, false)

	_, err := svc.PlaceOrder(testCtx, 42)
	require.ErrorIs(t, err, service.ErrEmptyCart)

	assert.Zero(t, countRows(t, db, &order.Order{}))
	assert.Zero(t, countRows(t, db, &order.Line{}))
}

func TestPlaceOrderItemVanished(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db, false)

	it := seedItem(t, db, "Ghost", 100, 10)
	const userID = int64(7)
	addCartLine(t, db, userID, it.ID, 1)
	addCartLine(t, db, userID, it.ID+1000, 2) // 不存在的商品

	_, err := svc.PlaceOrder(testCtx, userID)
	require.ErrorIs(t, err, service.ErrItemsNotFound)

	// 全量回滚：购物车原样保留，订单表无痕迹，库存未动
	assert.Len(t, cartLines(t, db, userID), 2)
	assert.Zero(t, countRows(t, db, &order.Order{}))
	assert.Zero(t, countRows(t, db, &order.Line{}))
	assert.Equal(t, int64(10), itemStock(t, db, it.ID))
}

func TestPlaceOrderSoftDeletedItem(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db, false)

	it := seedItem(t, db, "Pulled", 100, 10)
	const userID = int64(8)
	addCartLine(t, db, userID, it.ID, 1)
	require.NoError(t, db.Model(&item.Item{}).Where("id = ?", it.ID).Update("is_deleted", true).Error)

	_, err := svc.PlaceOrder(testCtx, userID)
	require.ErrorIs(t, err, service.ErrItemsNotFound)
	assert.Len(t, cartLines(t, db, userID), 1)
}

func TestPlaceOrderClampsStockAtZero(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db, false)

	it := seedItem(t, db, "Scarce", 10, 3)
	const userID = int64(9)
	addCartLine(t, db, userID, it.ID, 5) // 超量下单

	placed, err := svc.PlaceOrder(testCtx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), placed.Amount)
	// 兜底钳制：库存只会到 0，不会为负
	assert.Equal(t, int64(0), itemStock(t, db, it.ID))
}

func TestPlaceOrderStrictStockRejects(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db, true)

	a := seedItem(t, db, "Plenty", 10, 100)
	b := seedItem(t, db, "Scarce", 10, 3)
	const userID = int64(10)
	addCartLine(t, db, userID, a.ID, 1)
	addCartLine(t, db, userID, b.ID, 5)

	_, err := svc.PlaceOrder(testCtx, userID)
	require.ErrorIs(t, err, service.ErrInsufficientStock)

	// 失败发生在订单和订单行已写入、购物车已删之后，必须整体回滚
	assert.Zero(t, countRows(t, db, &order.Order{}))
	assert.Zero(t, countRows(t, db, &order.Line{}))
	assert.Len(t, cartLines(t, db, userID), 2)
	assert.Equal(t, int64(100), itemStock(t, db, a.ID))
	assert.Equal(t, int64(3), itemStock(t, db, b.ID))
}

func TestPlaceOrderOtherCartsUntouched(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db, false)

	it := seedItem(t, db, "Shared", 10, 10)
	addCartLine(t, db, 1, it.ID, 1)
	addCartLine(t, db, 2, it.ID, 3)

	_, err := svc.PlaceOrder(testCtx, 1)
	require.NoError(t, err)

	assert.Empty(t, cartLines(t, db, 1))
	other := cartLines(t, db, 2)
	require.Len(t, other, 1)
	assert.Equal(t, int64(3), other[0].Quantity)
}

func TestPlaceOrderConcurrentLastUnit(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db, true)

	it := seedItem(t, db, "Last One", 10, 1)
	addCartLine(t, db, 1, it.ID, 1)
	addCartLine(t, db, 2, it.ID, 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, userID := range []int64{1, 2} {
		wg.Add(1)
		go func(slot int, uid int64) {
			defer wg.Done()
			_, errs[slot] = svc.PlaceOrder(testCtx, uid)
		}(i, userID)
	}
	wg.Wait()

	// 恰好一单成功，库存不会被卖超
	var ok, rejected int
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			require.ErrorIs(t, err, service.ErrInsufficientStock)
			rejected++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, int64(0), itemStock(t, db, it.ID))
	assert.Equal(t, int64(1), countRows(t, db, &order.Order{}))
}

func TestPlaceOrderConcurrentSharedStockFloor(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db, false)

	it := seedItem(t, db, "Shared Stock", 10, 5)
	addCartLine(t, db, 1, it.ID, 3)
	addCartLine(t, db, 2, it.ID, 3)

	var wg sync.WaitGroup
	for _, userID := range []int64{1, 2} {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			_, err := svc.PlaceOrder(testCtx, uid)
			assert.NoError(t, err)
		}(userID)
	}
	wg.Wait()

	// 两单串行化扣减：3+3 > 5，第二次触发兜底钳制，库存落在 0 而不是 -1
	assert.Equal(t, int64(0), itemStock(t, db, it.ID))
}

func TestPlaceOrderDoubleSubmit(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db, false)

	it := seedItem(t, db, "Once", 10, 10)
	const userID = int64(5)
	addCartLine(t, db, userID, it.ID, 2)

	_, err := svc.PlaceOrder(testCtx, userID)
	require.NoError(t, err)

	// 第二次提交看到的是空购物车，干净失败
	_, err = svc.PlaceOrder(testCtx, userID)
	require.ErrorIs(t, err, service.ErrEmptyCart)
	assert.Equal(t, int64(8), itemStock(t, db, it.ID))
	assert.Equal(t, int64(1), countRows(t, db, &order.Order{}))
}

func TestOrderListAndDetail(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db, false)

	it := seedItem(t, db, "History", 30, 10)
	const userID = int64(3)
	addCartLine(t, db, userID, it.ID, 2)
	placed, err := svc.PlaceOrder(testCtx, userID)
	require.NoError(t, err)

	list, err := svc.ListByUser(testCtx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, placed.OrderID, list[0].ID)
	assert.Equal(t, int64(60), list[0].Amount)

	detail, err := svc.Detail(testCtx, userID, placed.OrderID)
	require.NoError(t, err)
	require.Len(t, detail.Lines, 1)
	assert.Equal(t, it.ID, detail.Lines[0].ItemID)

	// 他人订单不可见
	_, err = svc.Detail(testCtx, userID+1, placed.OrderID)
	require.Error(t, err)
}
