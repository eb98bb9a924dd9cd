package item

import (
	"context"
	"time"
)

// Item 库存商品模型
type Item struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Price     int64     `gorm:"not null" json:"price"` // 单价，单位：分
	Stock     int64     `gorm:"not null" json:"stock"` // 可售数量，永不为负
	Category  string    `gorm:"size:32;index" json:"category"`
	IsDeleted bool      `gorm:"index;not null;default:false" json:"is_deleted"` // 软删除标记，历史订单不受影响
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository 商品仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Item, error)
	ListAvailable(ctx context.Context) ([]*Item, error) // 排除软删除
	ListByIDs(ctx context.Context, ids []int64) ([]*Item, error)
	Create(ctx context.Context, it *Item) error
	CreateBatch(ctx context.Context, items []*Item) error
	Update(ctx context.Context, it *Item) error
	SoftDelete(ctx context.Context, id int64) error
}
