package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kashaudhan/qp-assessment/internal/datamodels/cart"
)

type cartRepo struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepo{db: db}
}

// Upsert 加购：同一 (user_id, item_id) 冲突时累加数量
func (r *cartRepo) Upsert(ctx context.Context, line *cart.Line) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", line.Quantity),
		}),
	}).Create(line).Error
}

func (r *cartRepo) ListByUser(ctx context.Context, userID int64) ([]*cart.Line, error) {
	var list []*cart.Line
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("item_id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
