package main

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/kashaudhan/qp-assessment/internal/config"
	"github.com/kashaudhan/qp-assessment/internal/infra/log"
	"github.com/kashaudhan/qp-assessment/internal/infra/mq"
	"github.com/kashaudhan/qp-assessment/internal/infra/redis"
	"github.com/kashaudhan/qp-assessment/internal/repository/mysql"
	"github.com/kashaudhan/qp-assessment/internal/service"
)

const orderPlacedQueue = "order_placed"

func main() {
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		panic(err)
	}

	log.InitLogger()

	db := mysql.Init(&cfg.MySQL)
	mqConn := mq.Init(&cfg.RabbitMQ)
	redisClient := redis.Init(&cfg.Redis)

	itemRepo := mysql.NewItemRepository(db)
	stockCache := service.NewStockCacheService(itemRepo, redisClient)

	ch, err := mqConn.Channel()
	if err != nil {
		zap.L().Fatal("failed to open channel", zap.Error(err))
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(orderPlacedQueue, true, false, false, false, nil); err != nil {
		zap.L().Fatal("failed to declare queue", zap.Error(err))
	}

	// 手动确认模式（auto-ack=false），处理失败的消息重新入队
	msgs, err := ch.Consume(orderPlacedQueue, "", false, false, false, false, nil)
	if err != nil {
		zap.L().Fatal("failed to consume", zap.Error(err))
	}

	zap.L().Info("order worker started, waiting for messages...")

	for d := range msgs {
		var m service.OrderPlacedMessage
		if err := json.Unmarshal(d.Body, &m); err != nil {
			zap.L().Warn("invalid message", zap.Error(err))
			// 消息格式错误，拒绝并丢弃
			_ = d.Nack(false, false)
			continue
		}
		handleMessage(context.Background(), stockCache, &m, d)
	}
}

// handleMessage 按下单事件刷新涉及商品的库存缓存
func handleMessage(ctx context.Context, stockCache *service.StockCacheService, m *service.OrderPlacedMessage, d amqp.Delivery) {
	failed := false
	for _, it := range m.Items {
		if err := stockCache.Refresh(ctx, it.ItemID); err != nil {
			zap.L().Warn("refresh stock cache failed",
				zap.Int64("order_id", m.OrderID),
				zap.Int64("item_id", it.ItemID),
				zap.Error(err))
			failed = true
		}
	}
	if failed {
		// 缓存刷新失败重新入队，stock-sync 兜底也会修
		_ = d.Nack(false, true)
		return
	}

	zap.L().Info("stock cache refreshed",
		zap.Int64("order_id", m.OrderID),
		zap.String("order_no", m.OrderNo),
		zap.Int("items", len(m.Items)))
	if err := d.Ack(false); err != nil {
		zap.L().Warn("failed to ack message", zap.Error(err))
	}
}
