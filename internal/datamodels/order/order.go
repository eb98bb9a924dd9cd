package order

import (
	"context"
	"time"
)

// Order 订单主表，下单成功后不可变更
type Order struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	OrderNo   string    `gorm:"uniqueIndex;size:64;not null" json:"order_no"`
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	Amount    int64     `gorm:"not null" json:"amount"` // 各行小计之和，单位：分
	CreatedAt time.Time `json:"created_at"`
}

// Line 订单行，冻结下单瞬间的商品名称/单价/数量快照
type Line struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	OrderID   int64  `gorm:"index;not null" json:"order_id"`
	ItemID    int64  `gorm:"index;not null" json:"item_id"`
	ItemName  string `gorm:"size:128;not null" json:"item_name"`
	ItemPrice int64  `gorm:"not null" json:"item_price"`
	Quantity  int64  `gorm:"not null" json:"quantity"`
}

// TableName 订单行沿用历史表名 order_item
func (Line) TableName() string { return "order_item" }

// Repository 订单仓储接口（只读查询；写入全部发生在下单事务内）
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*Order, error)
	ListLines(ctx context.Context, orderID int64) ([]*Line, error)
}
