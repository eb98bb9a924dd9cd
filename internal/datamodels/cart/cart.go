package cart

import (
	"context"
	"time"
)

// Line 购物车行：同一用户同一商品只有一行，重复加购累加数量
type Line struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"uniqueIndex:uk_cart_user_item;not null" json:"user_id"`
	ItemID    int64     `gorm:"uniqueIndex:uk_cart_user_item;not null" json:"item_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// TableName 购物车沿用历史表名 cart
func (Line) TableName() string { return "cart" }

// Repository 购物车仓储接口
// 下单时的整车删除发生在订单事务内部，不走这里。
type Repository interface {
	Upsert(ctx context.Context, line *Line) error
	ListByUser(ctx context.Context, userID int64) ([]*Line, error)
}
