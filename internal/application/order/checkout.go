// Package order 结账和订单管理用例
package order

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/audit"
	"github.com/xiebiao/autoparts/internal/domain/cart"
	"github.com/xiebiao/autoparts/internal/domain/order"
	"github.com/xiebiao/autoparts/internal/domain/payment"
	"github.com/xiebiao/autoparts/internal/domain/user"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
	"github.com/xiebiao/autoparts/pkg/logger"
	"github.com/xiebiao/autoparts/pkg/metrics"
	"github.com/xiebiao/autoparts/pkg/tracing"
)

// CheckoutUseCase 结账用例:购物车 → 待支付订单 + 待支付记录
// 订单、支付记录、购物车状态、审计日志在同一事务内写入,要么全部成功要么全部回滚
type CheckoutUseCase struct {
	cartRepo    cart.Repository
	orderRepo   order.Repository
	paymentRepo payment.Repository
	userRepo    user.Repository
	auditRepo   audit.Repository
	tx          shared.Transactor
	publisher   shared.EventPublisher
}

// NewCheckoutUseCase 创建结账用例
func NewCheckoutUseCase(
	cartRepo cart.Repository,
	orderRepo order.Repository,
	paymentRepo payment.Repository,
	userRepo user.Repository,
	auditRepo audit.Repository,
	tx shared.Transactor,
	publisher shared.EventPublisher,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		cartRepo:    cartRepo,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		auditRepo:   auditRepo,
		tx:          tx,
		publisher:   publisher,
	}
}

// Execute 执行结账
//
// 并发说明:
//  1. 购物车行 SELECT ... FOR UPDATE,与加购/改数量互斥
//  2. orders.cart_id唯一索引兜底,一个购物车最多生成一个订单
//  3. 库存在这里不扣减,支付确认时才扣
func (uc *CheckoutUseCase) Execute(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "order", "Checkout", attribute.Int64("cart.id", int64(req.CartID)))
	defer span.End()
	start := time.Now()

	// 1. 参数校验(不访问数据库)
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return nil, order.ErrInvalidAddress
	}
	method, err := payment.ParseMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	userID := req.Actor.UserID
	if req.Actor.IsStaff() && req.UserID != 0 {
		userID = req.UserID
	}
	if userID == 0 {
		return nil, apperrors.ErrUnauthorized
	}

	var (
		newOrder   *order.Order
		newPayment *payment.Payment
	)
	err = uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		// ========================================
		// 步骤1:锁定购物车并校验
		// ========================================
		c, err := uc.cartRepo.FindByIDForUpdate(txCtx, req.CartID)
		if err != nil {
			return err
		}
		if c.UserID != nil && *c.UserID != userID && !req.Actor.IsStaff() {
			return apperrors.ErrForbidden
		}
		if err := c.Close(); err != nil {
			return err
		}

		// ========================================
		// 步骤2:用户必须存在
		// ========================================
		if _, err := uc.userRepo.FindByID(txCtx, userID); err != nil {
			return err
		}

		// ========================================
		// 步骤3:创建订单(金额取购物车快照单价)
		// ========================================
		newOrder = order.NewOrder(order.GenerateOrderNo(), c.ID, userID, address, string(method), c.Total())
		if err := uc.orderRepo.Create(txCtx, newOrder); err != nil {
			return err
		}

		// ========================================
		// 步骤4:创建待支付记录
		// ========================================
		newPayment = payment.NewPayment(newOrder.ID, newOrder.Total, method)
		if err := uc.paymentRepo.Create(txCtx, newPayment); err != nil {
			return err
		}

		// ========================================
		// 步骤5:购物车标记为已结算 + 审计
		// ========================================
		if err := uc.cartRepo.UpdateStatus(txCtx, c); err != nil {
			return err
		}
		return uc.auditRepo.Append(txCtx, audit.NewEntry(req.Actor.UserID,
			"checkout cart=%d order=%s user=%d total=%d", c.ID, newOrder.OrderNo, userID, newOrder.Total))
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	// 事务已提交
	metrics.IncCounter(metrics.OrdersCheckedOutTotal)
	metrics.ObserveHistogram(metrics.CheckoutDuration, time.Since(start).Seconds())
	metrics.ObserveHistogram(metrics.OrderAmount, float64(newOrder.Total))
	logger.FromContext(ctx).Info("order checked out",
		zap.Uint("order_id", newOrder.ID),
		zap.String("order_no", newOrder.OrderNo),
		zap.Uint("cart_id", req.CartID),
		zap.Int64("total", newOrder.Total),
	)
	shared.PublishQuietly(ctx, uc.publisher, shared.EventOrderCheckedOut, shared.OrderCheckedOut{
		OrderID:    newOrder.ID,
		OrderNo:    newOrder.OrderNo,
		CartID:     newOrder.CartID,
		UserID:     newOrder.UserID,
		Total:      newOrder.Total,
		OccurredAt: time.Now(),
	})

	return &CheckoutResponse{
		OrderID:       newOrder.ID,
		OrderNo:       newOrder.OrderNo,
		PaymentID:     newPayment.ID,
		PaymentNo:     newPayment.PaymentNo,
		Total:         newOrder.Total,
		Status:        string(newOrder.Status),
		PaymentStatus: string(newPayment.Status),
		PaymentMethod: string(newPayment.Method),
		CreatedAt:     newOrder.CreatedAt,
	}, nil
}
