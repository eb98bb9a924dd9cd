package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/kashaudhan/qp-assessment/internal/datamodels/item"
)

type itemRepo struct {
	db *gorm.DB
}

// NewItemRepository 创建商品仓储
func NewItemRepository(db *gorm.DB) item.Repository {
	return &itemRepo{db: db}
}

func (r *itemRepo) GetByID(ctx context.Context, id int64) (*item.Item, error) {
	var it item.Item
	if err := r.db.WithContext(ctx).First(&it, id).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *itemRepo) ListAvailable(ctx context.Context) ([]*item.Item, error) {
	var list []*item.Item
	if err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *itemRepo) ListByIDs(ctx context.Context, ids []int64) ([]*item.Item, error) {
	var list []*item.Item
	if len(ids) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *itemRepo) Create(ctx context.Context, it *item.Item) error {
	return r.db.WithContext(ctx).Create(it).Error
}

// CreateBatch 批量入库，单条多行 INSERT 写入
func (r *itemRepo) CreateBatch(ctx context.Context, items []*item.Item) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(items, len(items)).Error
}

func (r *itemRepo) Update(ctx context.Context, it *item.Item) error {
	return r.db.WithContext(ctx).Save(it).Error
}

// SoftDelete 软删除：只打标记，历史订单里的快照不受影响
func (r *itemRepo) SoftDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&item.Item{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}
