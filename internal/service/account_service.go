package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kashaudhan/qp-assessment/internal/auth"
	"github.com/kashaudhan/qp-assessment/internal/config"
	"github.com/kashaudhan/qp-assessment/internal/datamodels/account"
)

var (
	// ErrInvalidEmailOrPassword 注册/建管理员时的入参校验失败
	ErrInvalidEmailOrPassword = errors.New("邮箱或密码不合法")
	// ErrBadCredentials 登录失败统一返回，不区分邮箱不存在和密码错误
	ErrBadCredentials = errors.New("邮箱或密码错误")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const minPasswordLen = 8

// AccountService 账户注册/登录/管理员创建
type AccountService struct {
	repo account.Repository
	jwt  *config.JWTConfig
	cost int
}

// NewAccountService 创建账户服务
func NewAccountService(repo account.Repository, jwt *config.JWTConfig, bcryptCost int) *AccountService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AccountService{repo: repo, jwt: jwt, cost: bcryptCost}
}

func validateCredentials(email, password string) error {
	if !emailPattern.MatchString(email) || len(password) < minPasswordLen {
		return ErrInvalidEmailOrPassword
	}
	return nil
}

// SignUp 注册普通用户
func (s *AccountService) SignUp(ctx context.Context, email, password string) (*account.Account, error) {
	return s.create(ctx, email, password, account.RoleUser)
}

// CreateAdmin 创建管理员账户，角色校验由路由层完成
func (s *AccountService) CreateAdmin(ctx context.Context, email, password string) (*account.Account, error) {
	return s.create(ctx, email, password, account.RoleAdmin)
}

func (s *AccountService) create(ctx context.Context, email, password, role string) (*account.Account, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}
	acc := &account.Account{
		Email:    email,
		Password: string(hash),
		Role:     role,
	}
	if err := s.repo.Create(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// LoginResult 登录成功后的返回内容
type LoginResult struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Token  string `json:"token"`
}

// Login 校验密码并签发 JWT，顺带刷新 last_login
func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, ErrBadCredentials
	}
	acc, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.Password), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}

	if err := s.repo.UpdateLastLogin(ctx, acc.ID, time.Now()); err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}

	token, err := auth.GenerateToken(s.jwt, acc.ID, acc.Email, acc.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		UserID: acc.ID,
		Email:  acc.Email,
		Role:   acc.Role,
		Token:  token,
	}, nil
}
