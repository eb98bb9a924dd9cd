package service

import (
	"context"
	"errors"

	"github.com/kashaudhan/qp-assessment/internal/datamodels/cart"
	"github.com/kashaudhan/qp-assessment/internal/datamodels/item"
)

// ErrInvalidCartLine 加购参数不合法
var ErrInvalidCartLine = errors.New("加购数量必须大于 0")

// CartService 购物车维护与明细查询
type CartService struct {
	cartRepo cart.Repository
	itemRepo item.Repository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo cart.Repository, itemRepo item.Repository) *CartService {
	return &CartService{cartRepo: cartRepo, itemRepo: itemRepo}
}

// AddToCart 加购；同一商品重复加购累加数量
func (s *CartService) AddToCart(ctx context.Context, userID, itemID, quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidCartLine
	}
	// 只允许加购存在且未下架的商品
	it, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return ErrItemsNotFound
	}
	if it.IsDeleted {
		return ErrItemsNotFound
	}
	return s.cartRepo.Upsert(ctx, &cart.Line{
		UserID:   userID,
		ItemID:   itemID,
		Quantity: quantity,
	})
}

// CartItemDetail 购物车明细：购物车行与商品现价的合并视图
type CartItemDetail struct {
	ItemID   int64  `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
	Category string `json:"category"`
	Subtotal int64  `json:"subtotal"`
}

// GetCart 查询购物车明细。购物车里引用的商品在商品表里必须都能找到，
// 找不到说明数据完整性被破坏，直接报错而不是悄悄丢行。
func (s *CartService) GetCart(ctx context.Context, userID int64) ([]*CartItemDetail, error) {
	lines, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return []*CartItemDetail{}, nil
	}

	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ItemID)
	}
	items, err := s.itemRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*item.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	out := make([]*CartItemDetail, 0, len(lines))
	for _, l := range lines {
		it, ok := byID[l.ItemID]
		if !ok {
			return nil, ErrItemsNotFound
		}
		out = append(out, &CartItemDetail{
			ItemID:   it.ID,
			Name:     it.Name,
			Price:    it.Price,
			Quantity: l.Quantity,
			Category: it.Category,
			Subtotal: it.Price * l.Quantity,
		})
	}
	return out, nil
}
