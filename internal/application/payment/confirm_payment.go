// Package payment 支付确认、失败、网关交易和统计用例
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	invapp "github.com/xiebiao/autoparts/internal/application/inventory"
	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/audit"
	"github.com/xiebiao/autoparts/internal/domain/cart"
	"github.com/xiebiao/autoparts/internal/domain/inventory"
	"github.com/xiebiao/autoparts/internal/domain/order"
	"github.com/xiebiao/autoparts/internal/domain/payment"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
	"github.com/xiebiao/autoparts/pkg/logger"
	"github.com/xiebiao/autoparts/pkg/metrics"
	"github.com/xiebiao/autoparts/pkg/tracing"
)

// ConfirmPaymentUseCase 确认支付(扣减库存)
//
// 幂等与并发:
//  1. 订单行、支付行依次 SELECT ... FOR UPDATE(与取消订单的加锁顺序一致)
//  2. 支付已是终态(APPROVED/FAILED)直接返回当前结果,不再扣库存
//  3. 并发的两次回调在锁上串行,第二次看到的一定是终态
//  4. 库存扣减、支付状态、订单状态、审计日志在同一事务,任何一步失败全部回滚
type ConfirmPaymentUseCase struct {
	orderRepo   order.Repository
	cartRepo    cart.Repository
	paymentRepo payment.Repository
	auditRepo   audit.Repository
	stock       inventory.Service
	tx          shared.Transactor
	cache       shared.CacheInvalidator
	lowStock    *invapp.LowStockChecker
	publisher   shared.EventPublisher
}

// NewConfirmPaymentUseCase 创建用例
func NewConfirmPaymentUseCase(
	orderRepo order.Repository,
	cartRepo cart.Repository,
	paymentRepo payment.Repository,
	auditRepo audit.Repository,
	stock inventory.Service,
	tx shared.Transactor,
	cache shared.CacheInvalidator,
	lowStock *invapp.LowStockChecker,
	publisher shared.EventPublisher,
) *ConfirmPaymentUseCase {
	return &ConfirmPaymentUseCase{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		paymentRepo: paymentRepo,
		auditRepo:   auditRepo,
		stock:       stock,
		tx:          tx,
		cache:       cache,
		lowStock:    lowStock,
		publisher:   publisher,
	}
}

// shortage 确认时库存不足的明细
type shortage struct {
	line cart.Line
	err  error
}

// Execute 确认支付
func (uc *ConfirmPaymentUseCase) Execute(ctx context.Context, req ConfirmRequest) (*Outcome, error) {
	ctx, span := tracing.StartSpan(ctx, "payment", "ConfirmPayment", attribute.Int64("order.id", int64(req.OrderID)))
	defer span.End()

	if !req.Actor.IsSystem() && !req.Actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	// 管理员手动确认必须带上收款凭证号,否则无法对账
	if !req.Actor.IsSystem() && strings.TrimSpace(req.ExternalRef) == "" {
		return nil, payment.ErrMissingExternalRef
	}

	var (
		outcome *Outcome
		short   *shortage
		paid    *payment.Payment
	)
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		// ========================================
		// 步骤1:加锁 + 幂等检查
		// ========================================
		o, p, err := lockOrderAndPayment(txCtx, uc.orderRepo, uc.paymentRepo, req.OrderID)
		if err != nil {
			return err
		}
		if p.Status.IsTerminal() {
			outcome = newOutcome(o, p, nil)
			outcome.AlreadyProcessed = true
			return nil
		}

		// ========================================
		// 步骤2:按购物车明细逐行扣减库存
		// ========================================
		// 单条条件UPDATE(WHERE stock >= ?),库存不足时整个事务回滚
		c, err := uc.cartRepo.FindByID(txCtx, o.CartID)
		if err != nil {
			return err
		}
		movements := make([]*inventory.Movement, 0, len(c.Lines))
		for _, line := range c.Lines {
			mv, err := uc.stock.Apply(txCtx, inventory.Adjustment{
				ProductID: line.ProductID,
				BranchID:  line.BranchID,
				Type:      inventory.MovementSale,
				Quantity:  line.Quantity,
				OrderID:   o.ID,
				UserID:    req.Actor.UserID,
				Note:      o.OrderNo,
			})
			if err != nil {
				if errors.Is(err, inventory.ErrInsufficientStock) || errors.Is(err, inventory.ErrStockNotFound) {
					short = &shortage{line: line, err: err}
				}
				return err
			}
			movements = append(movements, mv)
		}

		// ========================================
		// 步骤3:支付APPROVED、订单CONFIRMED、审计
		// ========================================
		wasFlagged := p.NeedsReconciliation
		if err := p.Approve(req.ExternalRef, time.Now()); err != nil {
			return err
		}
		if err := uc.paymentRepo.Update(txCtx, p); err != nil {
			return err
		}
		if err := o.Confirm(); err != nil {
			return err
		}
		if err := uc.orderRepo.UpdateStatus(txCtx, o); err != nil {
			return err
		}
		if err := uc.auditRepo.Append(txCtx, audit.NewEntry(req.Actor.UserID,
			"confirm payment order=%s ref=%s amount=%d", o.OrderNo, req.ExternalRef, p.Amount)); err != nil {
			return err
		}
		if wasFlagged {
			if err := uc.auditRepo.Append(txCtx, audit.NewEntry(req.Actor.UserID,
				"reconciliation resolved order=%s ref=%s", o.OrderNo, req.ExternalRef)); err != nil {
				return err
			}
		}

		paid = p
		outcome = newOutcome(o, p, movements)
		return nil
	})

	// ========================================
	// 步骤4:库存不足 → 人工对账
	// ========================================
	if short != nil {
		tracing.RecordError(span, err)
		return nil, uc.flagReconciliation(ctx, req, short)
	}
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	if outcome.AlreadyProcessed {
		metrics.IncCounterVec(metrics.PaymentsTotal, map[string]string{"result": "already_processed"})
		logger.FromContext(ctx).Info("payment already processed",
			zap.Uint("order_id", outcome.OrderID),
			zap.String("payment_status", outcome.PaymentStatus),
		)
		return outcome, nil
	}

	// 事务已提交
	metrics.IncCounterVec(metrics.PaymentsTotal, map[string]string{"result": "approved"})
	productIDs := make([]uint, 0, len(outcome.Products))
	for _, p := range outcome.Products {
		metrics.IncCounterVec(metrics.StockMovementsTotal, map[string]string{"type": string(inventory.MovementSale)})
		productIDs = append(productIDs, p.ProductID)
	}
	uc.cache.Invalidate(ctx, productIDs...)
	logger.FromContext(ctx).Info("payment approved",
		zap.Uint("order_id", outcome.OrderID),
		zap.String("external_ref", outcome.ExternalRef),
	)
	shared.PublishQuietly(ctx, uc.publisher, shared.EventPaymentApproved, shared.PaymentApproved{
		OrderID:     outcome.OrderID,
		PaymentID:   paid.ID,
		Amount:      paid.Amount,
		ExternalRef: paid.ExternalRef,
		OccurredAt:  time.Now(),
	})
	uc.lowStock.Check(ctx, productIDs...)

	return outcome, nil
}

// flagReconciliation 已收款但库存不足
// 扣减事务已回滚,另起事务标记支付需要人工对账(支付保持PROCESSING/PENDING,订单保持PENDING)
func (uc *ConfirmPaymentUseCase) flagReconciliation(ctx context.Context, req ConfirmRequest, short *shortage) error {
	reason := fmt.Sprintf("insufficient stock product=%d branch=%d requested=%d",
		short.line.ProductID, short.line.BranchID, short.line.Quantity)

	var flagged *payment.Payment
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		o, p, err := lockOrderAndPayment(txCtx, uc.orderRepo, uc.paymentRepo, req.OrderID)
		if err != nil {
			return err
		}
		if p.Status.IsTerminal() {
			return nil
		}
		p.FlagReconciliation(req.ExternalRef, reason)
		if err := uc.paymentRepo.Update(txCtx, p); err != nil {
			return err
		}
		flagged = p
		return uc.auditRepo.Append(txCtx, audit.NewEntry(req.Actor.UserID,
			"reconciliation required order=%s ref=%s %s", o.OrderNo, req.ExternalRef, reason))
	})

	metrics.IncCounter(metrics.StockReconciliationTotal)
	logger.FromContext(ctx).Error("payment captured but stock insufficient",
		zap.Bool("reconciliation", true),
		zap.Uint("order_id", req.OrderID),
		zap.String("external_ref", req.ExternalRef),
		zap.Uint("product_id", short.line.ProductID),
		zap.Uint("branch_id", short.line.BranchID),
		zap.Int("requested", short.line.Quantity),
		zap.NamedError("stock_error", short.err),
		zap.NamedError("flag_error", err),
	)

	if flagged != nil {
		shared.PublishQuietly(ctx, uc.publisher, shared.EventPaymentReconciliation, shared.PaymentReconciliation{
			OrderID:     req.OrderID,
			PaymentID:   flagged.ID,
			ExternalRef: req.ExternalRef,
			ProductID:   short.line.ProductID,
			BranchID:    short.line.BranchID,
			Requested:   short.line.Quantity,
			OccurredAt:  time.Now(),
		})
	}

	if err != nil {
		return apperrors.ErrStockReconciliation.WithErr(errors.Join(short.err, err))
	}
	return apperrors.ErrStockReconciliation.WithErr(short.err)
}

// FailPaymentUseCase 支付失败:支付FAILED、订单FAILED,不动库存
type FailPaymentUseCase struct {
	orderRepo   order.Repository
	paymentRepo payment.Repository
	auditRepo   audit.Repository
	tx          shared.Transactor
	publisher   shared.EventPublisher
}

// NewFailPaymentUseCase 创建用例
func NewFailPaymentUseCase(
	orderRepo order.Repository,
	paymentRepo payment.Repository,
	auditRepo audit.Repository,
	tx shared.Transactor,
	publisher shared.EventPublisher,
) *FailPaymentUseCase {
	return &FailPaymentUseCase{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		auditRepo:   auditRepo,
		tx:          tx,
		publisher:   publisher,
	}
}

// Execute 标记支付失败,终态上重复调用是空操作
func (uc *FailPaymentUseCase) Execute(ctx context.Context, req FailRequest) (*Outcome, error) {
	var (
		outcome *Outcome
		failed  *payment.Payment
	)
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		o, p, err := lockOrderAndPayment(txCtx, uc.orderRepo, uc.paymentRepo, req.OrderID)
		if err != nil {
			return err
		}
		if !req.Actor.IsSystem() && !req.Actor.IsAdmin() && !o.IsOwnedBy(req.Actor.UserID) {
			return apperrors.ErrForbidden
		}
		if p.Status.IsTerminal() {
			outcome = newOutcome(o, p, nil)
			outcome.AlreadyProcessed = true
			return nil
		}

		if err := p.Fail(req.Reason, time.Now()); err != nil {
			return err
		}
		if err := uc.paymentRepo.Update(txCtx, p); err != nil {
			return err
		}
		if err := o.Fail(); err != nil {
			return err
		}
		if err := uc.orderRepo.UpdateStatus(txCtx, o); err != nil {
			return err
		}
		if err := uc.auditRepo.Append(txCtx, audit.NewEntry(req.Actor.UserID,
			"fail payment order=%s reason=%s", o.OrderNo, req.Reason)); err != nil {
			return err
		}

		failed = p
		outcome = newOutcome(o, p, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if outcome.AlreadyProcessed {
		metrics.IncCounterVec(metrics.PaymentsTotal, map[string]string{"result": "already_processed"})
		return outcome, nil
	}

	metrics.IncCounterVec(metrics.PaymentsTotal, map[string]string{"result": "failed"})
	logger.FromContext(ctx).Info("payment failed",
		zap.Uint("order_id", outcome.OrderID),
		zap.String("reason", req.Reason),
	)
	shared.PublishQuietly(ctx, uc.publisher, shared.EventPaymentFailed, shared.PaymentFailed{
		OrderID:    outcome.OrderID,
		PaymentID:  failed.ID,
		Reason:     req.Reason,
		OccurredAt: time.Now(),
	})
	return outcome, nil
}

// lockOrderAndPayment 先锁订单再锁支付
func lockOrderAndPayment(ctx context.Context, orders order.Repository, payments payment.Repository, orderID uint) (*order.Order, *payment.Payment, error) {
	o, err := orders.FindByIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	p, err := payments.FindByOrderIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return o, p, nil
}
