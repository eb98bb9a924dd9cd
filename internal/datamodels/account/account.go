package account

import (
	"context"
	"time"
)

// 账户角色
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Account 账户模型（普通用户与管理员共用一张表，靠 Role 区分）
type Account struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:128;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt 哈希
	Role      string    `gorm:"size:16;index;not null" json:"role"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// Repository 账户仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Create(ctx context.Context, acc *Account) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}
