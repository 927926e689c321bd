package order

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/audit"
	"github.com/xiebiao/autoparts/internal/domain/cart"
	"github.com/xiebiao/autoparts/internal/domain/inventory"
	"github.com/xiebiao/autoparts/internal/domain/order"
	"github.com/xiebiao/autoparts/internal/domain/payment"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
	"github.com/xiebiao/autoparts/pkg/logger"
	"github.com/xiebiao/autoparts/pkg/metrics"
)

// DeliverOrderUseCase 标记订单已交付(CONFIRMED → DELIVERED)
type DeliverOrderUseCase struct {
	orderRepo order.Repository
	auditRepo audit.Repository
	tx        shared.Transactor
}

// NewDeliverOrderUseCase 创建用例
func NewDeliverOrderUseCase(orderRepo order.Repository, auditRepo audit.Repository, tx shared.Transactor) *DeliverOrderUseCase {
	return &DeliverOrderUseCase{orderRepo: orderRepo, auditRepo: auditRepo, tx: tx}
}

// Execute 执行交付
func (uc *DeliverOrderUseCase) Execute(ctx context.Context, orderID uint, actor shared.Actor) (*OrderDTO, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	var result *order.Order
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.FindByIDForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if err := o.Deliver(); err != nil {
			return err
		}
		if err := uc.orderRepo.UpdateStatus(txCtx, o); err != nil {
			return err
		}
		result = o
		return uc.auditRepo.Append(txCtx, audit.NewEntry(actor.UserID, "deliver order=%s", o.OrderNo))
	})
	if err != nil {
		return nil, err
	}

	dto := toOrderDTO(result)
	return &dto, nil
}

// CancelOrderUseCase 取消订单
// 1. 顾客只能取消自己的PENDING订单
// 2. 管理员可取消PENDING/CONFIRMED/FAILED订单
// 3. CONFIRMED订单的库存已扣减,取消时按明细退回(RETURN流水)
// 4. 未完成的支付记录同时标记失败,之后到达的网关回调成为空操作
type CancelOrderUseCase struct {
	orderRepo   order.Repository
	cartRepo    cart.Repository
	paymentRepo payment.Repository
	auditRepo   audit.Repository
	stock       inventory.Service
	tx          shared.Transactor
	cache       shared.CacheInvalidator
	publisher   shared.EventPublisher
}

// NewCancelOrderUseCase 创建用例
func NewCancelOrderUseCase(
	orderRepo order.Repository,
	cartRepo cart.Repository,
	paymentRepo payment.Repository,
	auditRepo audit.Repository,
	stock inventory.Service,
	tx shared.Transactor,
	cache shared.CacheInvalidator,
	publisher shared.EventPublisher,
) *CancelOrderUseCase {
	return &CancelOrderUseCase{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		paymentRepo: paymentRepo,
		auditRepo:   auditRepo,
		stock:       stock,
		tx:          tx,
		cache:       cache,
		publisher:   publisher,
	}
}

// Execute 执行取消
func (uc *CancelOrderUseCase) Execute(ctx context.Context, req CancelOrderRequest) (*OrderDTO, error) {
	var (
		result    *order.Order
		restocked []uint
	)
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 锁定订单,权限校验
		o, err := uc.orderRepo.FindByIDForUpdate(txCtx, req.OrderID)
		if err != nil {
			return err
		}
		if !req.Actor.IsAdmin() {
			if !o.IsOwnedBy(req.Actor.UserID) {
				return apperrors.ErrForbidden
			}
			if o.Status != order.StatusPending {
				return order.ErrInvalidStatusTransition
			}
		}

		// 2. 状态转换(必须在Cancel之前判断是否需要退库存)
		needsRestock := o.NeedsRestock()
		if err := o.Cancel(); err != nil {
			return err
		}
		if err := uc.orderRepo.UpdateStatus(txCtx, o); err != nil {
			return err
		}

		// 3. 退回库存
		if needsRestock {
			c, err := uc.cartRepo.FindByID(txCtx, o.CartID)
			if err != nil {
				return err
			}
			for _, line := range c.Lines {
				if _, err := uc.stock.Apply(txCtx, inventory.Adjustment{
					ProductID: line.ProductID,
					BranchID:  line.BranchID,
					Type:      inventory.MovementReturn,
					Quantity:  line.Quantity,
					OrderID:   o.ID,
					UserID:    req.Actor.UserID,
					Note:      "order cancelled",
				}); err != nil {
					return err
				}
				restocked = append(restocked, line.ProductID)
			}
		}

		// 4. 关闭未完成的支付
		p, err := uc.paymentRepo.FindByOrderIDForUpdate(txCtx, o.ID)
		switch {
		case errors.Is(err, payment.ErrPaymentNotFound):
		case err != nil:
			return err
		case !p.Status.IsTerminal():
			if err := p.Fail("order cancelled", time.Now()); err != nil {
				return err
			}
			if err := uc.paymentRepo.Update(txCtx, p); err != nil {
				return err
			}
		}

		result = o
		return uc.auditRepo.Append(txCtx, audit.NewEntry(req.Actor.UserID,
			"cancel order=%s restocked=%t reason=%s", o.OrderNo, needsRestock, req.Reason))
	})
	if err != nil {
		return nil, err
	}

	if len(restocked) > 0 {
		for range restocked {
			metrics.IncCounterVec(metrics.StockMovementsTotal, map[string]string{"type": string(inventory.MovementReturn)})
		}
		uc.cache.Invalidate(ctx, restocked...)
	}
	logger.FromContext(ctx).Info("order cancelled",
		zap.Uint("order_id", result.ID),
		zap.Bool("restocked", len(restocked) > 0),
	)
	shared.PublishQuietly(ctx, uc.publisher, shared.EventOrderCancelled, shared.OrderCancelled{
		OrderID:    result.ID,
		Restocked:  len(restocked) > 0,
		OccurredAt: time.Now(),
	})

	dto := toOrderDTO(result)
	return &dto, nil
}
