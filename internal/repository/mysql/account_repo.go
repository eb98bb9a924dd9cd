package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kashaudhan/qp-assessment/internal/datamodels/account"
)

type accountRepo struct {
	db *gorm.DB
}

// NewAccountRepository 创建账户仓储
func NewAccountRepository(db *gorm.DB) account.Repository {
	return &accountRepo{db: db}
}

func (r *accountRepo) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	var acc account.Account
	if err := r.db.WithContext(ctx).First(&acc, id).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	var acc account.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&acc).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

func (r *accountRepo) Create(ctx context.Context, acc *account.Account) error {
	return r.db.WithContext(ctx).Create(acc).Error
}

func (r *accountRepo) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&account.Account{}).
		Where("id = ?", id).
		Update("last_login", at).Error
}
