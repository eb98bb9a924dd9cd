package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/kashaudhan/qp-assessment/internal/datamodels/order"
)

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepo{db: db}
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int64) ([]*order.Order, error) {
	var list []*order.Order
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) ListLines(ctx context.Context, orderID int64) ([]*order.Line, error) {
	var list []*order.Line
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("item_id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
