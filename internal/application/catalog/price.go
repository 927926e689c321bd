package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/audit"
	"github.com/xiebiao/autoparts/internal/domain/catalog"
	"github.com/xiebiao/autoparts/internal/domain/inventory"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
	"github.com/xiebiao/autoparts/pkg/logger"
)

// UpdatePriceUseCase 商品调价(管理员)
// 购物车明细保存的是加入时的单价,调价只影响之后加入的明细
type UpdatePriceUseCase struct {
	productRepo   catalog.ProductRepository
	inventoryRepo inventory.Repository
	auditRepo     audit.Repository
	tx            shared.Transactor
	cache         shared.CacheInvalidator
}

// NewUpdatePriceUseCase 创建用例
func NewUpdatePriceUseCase(
	productRepo catalog.ProductRepository,
	inventoryRepo inventory.Repository,
	auditRepo audit.Repository,
	tx shared.Transactor,
	cache shared.CacheInvalidator,
) *UpdatePriceUseCase {
	return &UpdatePriceUseCase{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		auditRepo:     auditRepo,
		tx:            tx,
		cache:         cache,
	}
}

// Execute 执行调价
func (uc *UpdatePriceUseCase) Execute(ctx context.Context, req UpdatePriceRequest) (*ProductDTO, error) {
	if !req.Actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	var (
		updated  *catalog.Product
		oldPrice int64
	)
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		p, err := uc.productRepo.FindByID(txCtx, req.ProductID)
		if err != nil {
			return err
		}
		oldPrice = p.Price
		if err := p.UpdatePrice(req.Price); err != nil {
			return err
		}
		if err := uc.productRepo.Update(txCtx, p); err != nil {
			return err
		}
		updated = p
		return uc.auditRepo.Append(txCtx, audit.NewEntry(req.Actor.UserID,
			"update price product=%d old=%d new=%d", p.ID, oldPrice, p.Price))
	})
	if err != nil {
		return nil, err
	}

	// 详情缓存里有价格
	uc.cache.Invalidate(ctx, updated.ID)
	logger.FromContext(ctx).Info("product price updated",
		zap.Uint("product_id", updated.ID),
		zap.Int64("old_price", oldPrice),
		zap.Int64("new_price", updated.Price),
	)

	totals, err := uc.inventoryRepo.TotalStocks(ctx, []uint{updated.ID})
	if err != nil {
		return nil, err
	}
	dto := toProductDTO(updated, totals[updated.ID])
	return &dto, nil
}
