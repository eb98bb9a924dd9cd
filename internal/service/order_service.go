package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kashaudhan/qp-assessment/internal/config"
	"github.com/kashaudhan/qp-assessment/internal/datamodels/cart"
	"github.com/kashaudhan/qp-assessment/internal/datamodels/item"
	"github.com/kashaudhan/qp-assessment/internal/datamodels/order"
)

var (
	// ErrEmptyCart 购物车为空，无事可做
	ErrEmptyCart = errors.New("购物车为空")
	// ErrItemsNotFound 购物车引用的商品已不存在或已下架
	ErrItemsNotFound = errors.New("购物车里有商品已不存在")
	// ErrInsufficientStock 严格模式下库存不足直接拒单
	ErrInsufficientStock = errors.New("库存不足")
)

const orderPlacedQueue = "order_placed"

// OrderPlacedItem 下单事件里的商品行
type OrderPlacedItem struct {
	ItemID   int64 `json:"item_id"`
	Quantity int64 `json:"quantity"`
}

// OrderPlacedMessage 下单成功后发往 MQ 的事件，worker 据此刷新库存缓存
type OrderPlacedMessage struct {
	OrderID int64             `json:"order_id"`
	OrderNo string            `json:"order_no"`
	UserID  int64             `json:"user_id"`
	Amount  int64             `json:"amount"`
	Items   []OrderPlacedItem `json:"items"`
}

// PlacedOrder 下单成功返回给调用方的结果
type PlacedOrder struct {
	OrderID int64  `json:"order_id"`
	OrderNo string `json:"order_no"`
	Amount  int64  `json:"amount"`
}

// OrderService 下单引擎：购物车 → 订单的原子转换，唯一做跨表写入的服务
type OrderService struct {
	db          *gorm.DB
	repo        order.Repository
	mqConn      *amqp.Connection
	strictStock bool
}

// NewOrderService 创建下单服务。mqConn 可为 nil（测试/无 MQ 环境），
// 此时跳过下单事件发布，订单本身不受影响。
func NewOrderService(db *gorm.DB, repo order.Repository, mqConn *amqp.Connection, cfg *config.OrderConfig) *OrderService {
	strict := false
	if cfg != nil {
		strict = cfg.StrictStock
	}
	return &OrderService{
		db:          db,
		repo:        repo,
		mqConn:      mqConn,
		strictStock: strict,
	}
}

// PlaceOrder 把 userID 的购物车转成一张订单。
// 整个流程在一个数据库事务里完成，任何一步失败全量回滚，外界看不到半成品状态。
func (s *OrderService) PlaceOrder(ctx context.Context, userID int64) (*PlacedOrder, error) {
	GetMonitor().RecordOrderRequest()

	var placed PlacedOrder
	var msg OrderPlacedMessage

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) 取购物车，按 item_id 升序，后面的库存扣减沿用同一顺序
		var lines []cart.Line
		if err := tx.Where("user_id = ?", userID).Order("item_id ASC").Find(&lines).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		// 2) 取商品明细；购物车引用的商品必须全部存在，软删除的视同消失。
		//    少一个都不行：悄悄跳行会把金额算错。
		ids := make([]int64, 0, len(lines))
		qtyByItem := make(map[int64]int64, len(lines))
		for _, l := range lines {
			if _, ok := qtyByItem[l.ItemID]; !ok {
				ids = append(ids, l.ItemID)
			}
			qtyByItem[l.ItemID] += l.Quantity
		}
		var items []item.Item
		if err := tx.Where("id IN ? AND is_deleted = ?", ids, false).
			Order("id ASC").
			Find(&items).Error; err != nil {
			return err
		}
		if len(items) != len(ids) {
			return ErrItemsNotFound
		}
		byID := make(map[int64]*item.Item, len(items))
		for i := range items {
			byID[items[i].ID] = &items[i]
		}

		// 3) 精确整数金额（单位分）+ 订单行快照
		var amount int64
		orderLines := make([]order.Line, 0, len(lines))
		for _, l := range lines {
			it, ok := byID[l.ItemID]
			if !ok {
				return ErrItemsNotFound
			}
			amount += it.Price * l.Quantity
			orderLines = append(orderLines, order.Line{
				ItemID:    it.ID,
				ItemName:  it.Name,
				ItemPrice: it.Price,
				Quantity:  l.Quantity,
			})
		}

		// 4) 写订单主表，拿到生成的订单号
		o := order.Order{
			OrderNo: uuid.NewString(),
			UserID:  userID,
			Amount:  amount,
		}
		if err := tx.Create(&o).Error; err != nil {
			return err
		}

		// 5) 订单行一次性批量写入，往返次数与购物车大小无关
		for i := range orderLines {
			orderLines[i].OrderID = o.ID
		}
		if err := tx.CreateInBatches(orderLines, len(orderLines)).Error; err != nil {
			return err
		}

		// 6) 一条语句清空该用户的购物车
		res := tx.Where("user_id = ?", userID).Delete(&cart.Line{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("clear cart affected no rows for user %d", userID)
		}

		// 7) 扣库存。每个商品一条条件 UPDATE，语句自身的行锁保证同一商品的
		//    读-算-写串行化；按 item_id 升序执行，多商品订单之间不会死锁。
		for _, id := range ids {
			if err := s.adjustStock(tx, id, qtyByItem[id]); err != nil {
				return err
			}
		}

		placed = PlacedOrder{OrderID: o.ID, OrderNo: o.OrderNo, Amount: amount}
		msg = OrderPlacedMessage{
			OrderID: o.ID,
			OrderNo: o.OrderNo,
			UserID:  userID,
			Amount:  amount,
		}
		for _, id := range ids {
			msg.Items = append(msg.Items, OrderPlacedItem{ItemID: id, Quantity: qtyByItem[id]})
		}
		return nil
	})
	if err != nil {
		GetMonitor().RecordOrderError()
		return nil, err
	}

	GetMonitor().RecordOrderSuccess()
	// 事务已提交，事件发布只是尽力而为，失败不影响订单
	s.publishOrderPlaced(ctx, &msg)
	return &placed, nil
}

// adjustStock 在事务内扣减单个商品库存。
// 严格模式：库存不够直接拒单；默认模式：扣减钳制在 0，可售数永不为负。
func (s *OrderService) adjustStock(tx *gorm.DB, itemID, qty int64) error {
	if s.strictStock {
		res := tx.Model(&item.Item{}).
			Where("id = ? AND stock >= ?", itemID, qty).
			Update("stock", gorm.Expr("stock - ?", qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientStock
		}
		return nil
	}

	return tx.Model(&item.Item{}).
		Where("id = ?", itemID).
		Update("stock", gorm.Expr("CASE WHEN stock >= ? THEN stock - ? ELSE 0 END", qty, qty)).
		Error
}

func (s *OrderService) publishOrderPlaced(ctx context.Context, msg *OrderPlacedMessage) {
	if s.mqConn == nil {
		return
	}
	ch, err := s.mqConn.Channel()
	if err != nil {
		GetMonitor().RecordMQError()
		zap.L().Warn("open mq channel failed", zap.Error(err))
		return
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(orderPlacedQueue, true, false, false, false, nil); err != nil {
		GetMonitor().RecordMQError()
		zap.L().Warn("declare queue failed", zap.Error(err))
		return
	}

	body, err := json.Marshal(msg)
	if err != nil {
		zap.L().Warn("marshal order event failed", zap.Error(err))
		return
	}
	err = ch.PublishWithContext(
		ctx,
		"",
		orderPlacedQueue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		GetMonitor().RecordMQError()
		zap.L().Warn("publish order event failed", zap.Int64("order_id", msg.OrderID), zap.Error(err))
	}
}

// ListByUser 查询用户的历史订单
func (s *OrderService) ListByUser(ctx context.Context, userID int64) ([]*order.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// OrderDetail 订单主表 + 行快照
type OrderDetail struct {
	Order *order.Order  `json:"order"`
	Lines []*order.Line `json:"lines"`
}

// Detail 查询单个订单，只允许本人查看
func (s *OrderService) Detail(ctx context.Context, userID, orderID int64) (*OrderDetail, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	lines, err := s.repo.ListLines(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: o, Lines: lines}, nil
}
