package cart

import (
	"context"
	"fmt"

	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/cart"
	"github.com/xiebiao/autoparts/internal/domain/catalog"
	"github.com/xiebiao/autoparts/internal/domain/inventory"
)

// AddLineUseCase 加入购物车
// 只检查库存,不预占:真正扣减发生在支付确认时
type AddLineUseCase struct {
	cartRepo      cart.Repository
	productRepo   catalog.ProductRepository
	branchRepo    catalog.BranchRepository
	inventoryRepo inventory.Repository
	tx            shared.Transactor
}

// NewAddLineUseCase 创建加购用例
func NewAddLineUseCase(
	cartRepo cart.Repository,
	productRepo catalog.ProductRepository,
	branchRepo catalog.BranchRepository,
	inventoryRepo inventory.Repository,
	tx shared.Transactor,
) *AddLineUseCase {
	return &AddLineUseCase{
		cartRepo:      cartRepo,
		productRepo:   productRepo,
		branchRepo:    branchRepo,
		inventoryRepo: inventoryRepo,
		tx:            tx,
	}
}

// Execute 执行加购
// 购物车行加排他锁,同一购物车的加购、改数量、结算互相串行
func (uc *AddLineUseCase) Execute(ctx context.Context, req AddLineRequest) (*CartDTO, error) {
	if req.Quantity <= 0 {
		return nil, cart.ErrInvalidQuantity
	}

	var result *cart.Cart
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 锁定购物车
		c, err := uc.cartRepo.FindByIDForUpdate(txCtx, req.CartID)
		if err != nil {
			return err
		}
		if err := c.EnsureOpen(); err != nil {
			return err
		}

		// 2. 商品和门店必须存在,价格以数据库为准
		p, err := uc.productRepo.FindByID(txCtx, req.ProductID)
		if err != nil {
			return err
		}
		if _, err := uc.branchRepo.FindByID(txCtx, req.BranchID); err != nil {
			return err
		}

		// 3. 计算累加后的明细(单价沿用第一次加入时的快照)
		line, isNew, err := c.PlanAdd(p.ID, req.BranchID, req.Quantity, p.Price)
		if err != nil {
			return err
		}

		// 4. 按累加后的数量检查门店库存
		if err := checkStock(txCtx, uc.inventoryRepo, p.ID, req.BranchID, line.Quantity); err != nil {
			return err
		}

		// 5. 持久化
		if isNew {
			if err := uc.cartRepo.CreateLine(txCtx, &line); err != nil {
				return err
			}
			c.Lines = append(c.Lines, line)
		} else {
			if err := uc.cartRepo.UpdateLine(txCtx, &line); err != nil {
				return err
			}
			existing, _ := c.FindLine(p.ID)
			*existing = line
		}

		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toCartDTO(result, nil), nil
}

// UpdateLineUseCase 修改购物车明细数量
type UpdateLineUseCase struct {
	cartRepo      cart.Repository
	inventoryRepo inventory.Repository
	tx            shared.Transactor
}

// NewUpdateLineUseCase 创建用例
func NewUpdateLineUseCase(cartRepo cart.Repository, inventoryRepo inventory.Repository, tx shared.Transactor) *UpdateLineUseCase {
	return &UpdateLineUseCase{cartRepo: cartRepo, inventoryRepo: inventoryRepo, tx: tx}
}

// Execute 设置数量,0表示删除该行
func (uc *UpdateLineUseCase) Execute(ctx context.Context, req UpdateLineRequest) (*CartDTO, error) {
	if req.Quantity < 0 {
		return nil, cart.ErrInvalidQuantity
	}

	var result *cart.Cart
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		c, err := uc.cartRepo.FindByIDForUpdate(txCtx, req.CartID)
		if err != nil {
			return err
		}
		if err := c.EnsureOpen(); err != nil {
			return err
		}
		line, ok := c.FindLine(req.ProductID)
		if !ok {
			return cart.ErrLineNotFound
		}

		if req.Quantity == 0 {
			if err := uc.cartRepo.DeleteLine(txCtx, c.ID, req.ProductID); err != nil {
				return err
			}
			c.Lines = removeLine(c.Lines, req.ProductID)
			result = c
			return nil
		}

		if err := checkStock(txCtx, uc.inventoryRepo, line.ProductID, line.BranchID, req.Quantity); err != nil {
			return err
		}
		line.SetQuantity(req.Quantity)
		if err := uc.cartRepo.UpdateLine(txCtx, line); err != nil {
			return err
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toCartDTO(result, nil), nil
}

// RemoveLineUseCase 删除购物车明细
type RemoveLineUseCase struct {
	update *UpdateLineUseCase
}

// NewRemoveLineUseCase 创建用例
func NewRemoveLineUseCase(update *UpdateLineUseCase) *RemoveLineUseCase {
	return &RemoveLineUseCase{update: update}
}

// Execute 删除商品
func (uc *RemoveLineUseCase) Execute(ctx context.Context, cartID, productID uint) (*CartDTO, error) {
	return uc.update.Execute(ctx, UpdateLineRequest{CartID: cartID, ProductID: productID, Quantity: 0})
}

// checkStock 门店库存必须>=需要的数量
// 门店没有该商品的库存记录返回ErrStockNotFound
func checkStock(ctx context.Context, repo inventory.Repository, productID, branchID uint, quantity int) error {
	rec, err := repo.FindRecord(ctx, productID, branchID)
	if err != nil {
		return err
	}
	if !rec.CanDecrease(quantity) {
		return inventory.ErrInsufficientStock.WithErr(
			fmt.Errorf("product=%d branch=%d available=%d requested=%d", productID, branchID, rec.Stock, quantity))
	}
	return nil
}

func removeLine(lines []cart.Line, productID uint) []cart.Line {
	out := lines[:0]
	for _, l := range lines {
		if l.ProductID != productID {
			out = append(out, l)
		}
	}
	return out
}
