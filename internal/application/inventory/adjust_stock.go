package inventory

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/audit"
	"github.com/xiebiao/autoparts/internal/domain/catalog"
	"github.com/xiebiao/autoparts/internal/domain/inventory"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
	"github.com/xiebiao/autoparts/pkg/logger"
	"github.com/xiebiao/autoparts/pkg/metrics"
)

// AdjustStockRequest 入库/出库请求
type AdjustStockRequest struct {
	ProductID uint
	BranchID  uint
	Type      string // STOCK_IN / STOCK_OUT
	Quantity  int
	Note      string
	Actor     shared.Actor
}

// AdjustStockResponse 调整结果
type AdjustStockResponse struct {
	Movement MovementDTO    `json:"movement"`
	Alert    *LowStockAlert `json:"low_stock_alert,omitempty"`
}

// AdjustStockUseCase 员工手工入库/出库
// SALE和RETURN只由支付确认和订单取消产生,这里不接受
type AdjustStockUseCase struct {
	productRepo catalog.ProductRepository
	branchRepo  catalog.BranchRepository
	auditRepo   audit.Repository
	stock       inventory.Service
	tx          shared.Transactor
	cache       shared.CacheInvalidator
	lowStock    *LowStockChecker
}

// NewAdjustStockUseCase 创建用例
func NewAdjustStockUseCase(
	productRepo catalog.ProductRepository,
	branchRepo catalog.BranchRepository,
	auditRepo audit.Repository,
	stock inventory.Service,
	tx shared.Transactor,
	cache shared.CacheInvalidator,
	lowStock *LowStockChecker,
) *AdjustStockUseCase {
	return &AdjustStockUseCase{
		productRepo: productRepo,
		branchRepo:  branchRepo,
		auditRepo:   auditRepo,
		stock:       stock,
		tx:          tx,
		cache:       cache,
		lowStock:    lowStock,
	}
}

// Execute 执行库存调整
func (uc *AdjustStockUseCase) Execute(ctx context.Context, req AdjustStockRequest) (*AdjustStockResponse, error) {
	// 1. 权限和参数
	if !req.Actor.IsStaff() {
		return nil, apperrors.ErrForbidden
	}
	movementType := inventory.MovementType(strings.ToUpper(req.Type))
	if movementType != inventory.MovementStockIn && movementType != inventory.MovementStockOut {
		return nil, inventory.ErrInvalidMovementType
	}
	adj := inventory.Adjustment{
		ProductID: req.ProductID,
		BranchID:  req.BranchID,
		Type:      movementType,
		Quantity:  req.Quantity,
		UserID:    req.Actor.UserID,
		Note:      req.Note,
	}
	if err := adj.Validate(); err != nil {
		return nil, err
	}

	// 2. 调整库存 + 流水 + 审计(同一事务)
	var movement *inventory.Movement
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := uc.productRepo.FindByID(txCtx, req.ProductID); err != nil {
			return err
		}
		if _, err := uc.branchRepo.FindByID(txCtx, req.BranchID); err != nil {
			return err
		}

		mv, err := uc.stock.Apply(txCtx, adj)
		if err != nil {
			return err
		}
		movement = mv

		return uc.auditRepo.Append(txCtx, audit.NewEntry(req.Actor.UserID,
			"%s product=%d branch=%d quantity=%d stock_after=%d",
			movementType, req.ProductID, req.BranchID, req.Quantity, mv.StockAfter))
	})
	if err != nil {
		return nil, err
	}

	// 3. 提交后:指标、缓存失效、低库存检查
	metrics.IncCounterVec(metrics.StockMovementsTotal, map[string]string{"type": string(movementType)})
	uc.cache.Invalidate(ctx, req.ProductID)
	logger.FromContext(ctx).Info("stock adjusted",
		zap.String("type", string(movementType)),
		zap.Uint("product_id", req.ProductID),
		zap.Uint("branch_id", req.BranchID),
		zap.Int("stock_after", movement.StockAfter),
	)

	resp := &AdjustStockResponse{Movement: toMovementDTO(movement)}
	if alerts := uc.lowStock.Check(ctx, req.ProductID); len(alerts) > 0 {
		resp.Alert = &alerts[0]
	}
	return resp, nil
}

// MovementDTO 库存流水
type MovementDTO struct {
	ID         uint      `json:"id"`
	ProductID  uint      `json:"product_id"`
	BranchID   uint      `json:"branch_id"`
	Type       string    `json:"type"`
	Quantity   int       `json:"quantity"`
	StockAfter int       `json:"stock_after"`
	OrderID    uint      `json:"order_id,omitempty"`
	UserID     uint      `json:"user_id,omitempty"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func toMovementDTO(m *inventory.Movement) MovementDTO {
	return MovementDTO{
		ID:         m.ID,
		ProductID:  m.ProductID,
		BranchID:   m.BranchID,
		Type:       string(m.Type),
		Quantity:   m.Quantity,
		StockAfter: m.StockAfter,
		OrderID:    m.OrderID,
		UserID:     m.UserID,
		Note:       m.Note,
		CreatedAt:  m.CreatedAt,
	}
}
