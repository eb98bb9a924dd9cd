package service

import (
	"context"
	"errors"

	"github.com/kashaudhan/qp-assessment/internal/datamodels/item"
)

// ErrInvalidItem 商品字段校验失败
var ErrInvalidItem = errors.New("商品信息不完整或不合法")

// ItemService 商品查询与后台维护
type ItemService struct {
	repo item.Repository
}

// NewItemService 创建商品服务
func NewItemService(repo item.Repository) *ItemService {
	return &ItemService{repo: repo}
}

// ListAvailable 商品列表，软删除的商品不出现
func (s *ItemService) ListAvailable(ctx context.Context) ([]*item.Item, error) {
	return s.repo.ListAvailable(ctx)
}

// GetByID 单个商品
func (s *ItemService) GetByID(ctx context.Context, id int64) (*item.Item, error) {
	return s.repo.GetByID(ctx, id)
}

func validateItem(it *item.Item) error {
	if it.Name == "" || it.Category == "" || it.Price < 0 || it.Stock < 0 {
		return ErrInvalidItem
	}
	return nil
}

// Create 入库单个商品
func (s *ItemService) Create(ctx context.Context, it *item.Item) error {
	if err := validateItem(it); err != nil {
		return err
	}
	return s.repo.Create(ctx, it)
}

// CreateBatch 批量入库，任意一条不合法则整批拒绝
func (s *ItemService) CreateBatch(ctx context.Context, items []*item.Item) error {
	if len(items) == 0 {
		return ErrInvalidItem
	}
	for _, it := range items {
		if err := validateItem(it); err != nil {
			return err
		}
	}
	return s.repo.CreateBatch(ctx, items)
}

// Update 全量更新商品字段
func (s *ItemService) Update(ctx context.Context, it *item.Item) error {
	if err := validateItem(it); err != nil {
		return err
	}
	return s.repo.Update(ctx, it)
}

// SoftDelete 下架（软删除）
func (s *ItemService) SoftDelete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}
