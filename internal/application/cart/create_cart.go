// Package cart 购物车用例
package cart

import (
	"context"

	"github.com/xiebiao/autoparts/internal/domain/cart"
	"github.com/xiebiao/autoparts/internal/domain/catalog"
)

// CreateCartUseCase 创建购物车
type CreateCartUseCase struct {
	cartRepo cart.Repository
}

// NewCreateCartUseCase 创建用例
func NewCreateCartUseCase(cartRepo cart.Repository) *CreateCartUseCase {
	return &CreateCartUseCase{cartRepo: cartRepo}
}

// Execute 创建空购物车,除存储故障外总是成功
func (uc *CreateCartUseCase) Execute(ctx context.Context, req CreateCartRequest) (*CartDTO, error) {
	c := cart.NewCart(req.UserID)
	if err := uc.cartRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toCartDTO(c, nil), nil
}

// GetCartUseCase 查询购物车
type GetCartUseCase struct {
	cartRepo    cart.Repository
	productRepo catalog.ProductRepository
}

// NewGetCartUseCase 创建用例
func NewGetCartUseCase(cartRepo cart.Repository, productRepo catalog.ProductRepository) *GetCartUseCase {
	return &GetCartUseCase{cartRepo: cartRepo, productRepo: productRepo}
}

// Execute 查询购物车及明细(带商品名称)
func (uc *GetCartUseCase) Execute(ctx context.Context, cartID uint) (*CartDTO, error) {
	c, err := uc.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return toCartDTO(c, nil), nil
	}

	ids := make([]uint, 0, len(c.Lines))
	for _, l := range c.Lines {
		ids = append(ids, l.ProductID)
	}
	products, err := uc.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	return toCartDTO(c, names), nil
}
