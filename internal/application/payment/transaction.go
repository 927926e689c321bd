package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/order"
	"github.com/xiebiao/autoparts/internal/domain/payment"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
	"github.com/xiebiao/autoparts/pkg/logger"
	"github.com/xiebiao/autoparts/pkg/saga"
)

// CreateTransactionUseCase 发起网关交易("transaction created")
//
// 网关调用不能放进数据库事务,用Saga编排:
//  1. reserve:  PENDING → PROCESSING(补偿:退回PENDING)
//  2. gateway:  调用网关建单,拿到Token/URL
//  3. persist:  保存Token/URL
//
// 已有Token的PROCESSING支付直接返回原交易,重复点击"去支付"不会重复建单。
// 没有Token的PROCESSING支付是上次发起在建单前中断留下的,超过timeout后由本次接管继续建单。
type CreateTransactionUseCase struct {
	orderRepo   order.Repository
	paymentRepo payment.Repository
	gateway     payment.Gateway
	tx          shared.Transactor
	timeout     time.Duration
}

// NewCreateTransactionUseCase 创建用例
func NewCreateTransactionUseCase(
	orderRepo order.Repository,
	paymentRepo payment.Repository,
	gateway payment.Gateway,
	tx shared.Transactor,
	timeout time.Duration,
) *CreateTransactionUseCase {
	return &CreateTransactionUseCase{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		gateway:     gateway,
		tx:          tx,
		timeout:     timeout,
	}
}

// Execute 执行Saga
func (uc *CreateTransactionUseCase) Execute(ctx context.Context, req CreateTransactionRequest) (*TransactionResponse, error) {
	var (
		o        *order.Order
		p        *payment.Payment
		trx      *payment.Transaction
		existing bool
		resumed  bool
	)

	s := saga.NewSaga("create_transaction", uc.timeout, logger.FromContext(ctx))

	s.AddStep("reserve",
		func(ctx context.Context) error {
			return uc.tx.Transaction(ctx, func(txCtx context.Context) error {
				var err error
				o, p, err = lockOrderAndPayment(txCtx, uc.orderRepo, uc.paymentRepo, req.OrderID)
				if err != nil {
					return err
				}
				if !req.Actor.IsAdmin() && !o.IsOwnedBy(req.Actor.UserID) {
					return apperrors.ErrForbidden
				}
				if o.Status != order.StatusPending {
					return order.ErrInvalidStatusTransition
				}
				if p.Status == payment.StatusProcessing && p.HasTransaction() {
					existing = true
					return nil
				}
				if p.Status == payment.StatusProcessing {
					// Saga整体受timeout约束,超过timeout仍无Token说明上次发起已中断
					if err := p.ResumeProcessing(time.Now(), uc.timeout); err != nil {
						return err
					}
					resumed = true
				} else if err := p.StartProcessing(); err != nil {
					return err
				}
				return uc.paymentRepo.Update(txCtx, p)
			})
		},
		func(ctx context.Context) error {
			// 接管的支付保持PROCESSING,过期后可再次接管
			if existing || resumed {
				return nil
			}
			return uc.tx.Transaction(ctx, func(txCtx context.Context) error {
				current, err := uc.paymentRepo.FindByOrderIDForUpdate(txCtx, req.OrderID)
				if err != nil {
					return err
				}
				// 回调可能已经把支付推进到终态
				if current.Status != payment.StatusProcessing {
					return nil
				}
				if err := current.RevertToPending(); err != nil {
					return err
				}
				return uc.paymentRepo.Update(txCtx, current)
			})
		},
	)

	s.AddStep("gateway",
		func(ctx context.Context) error {
			if existing {
				return nil
			}
			var err error
			trx, err = uc.gateway.CreateTransaction(ctx, payment.CreateTransactionRequest{
				BuyOrder:  o.OrderNo,
				SessionID: uuid.NewString(),
				Amount:    p.Amount,
				ReturnURL: req.ReturnURL,
			})
			return err
		},
		nil, // 未确认的网关交易会自动过期
	)

	s.AddStep("persist",
		func(ctx context.Context) error {
			if existing {
				return nil
			}
			return uc.tx.Transaction(ctx, func(txCtx context.Context) error {
				current, err := uc.paymentRepo.FindByOrderIDForUpdate(txCtx, req.OrderID)
				if err != nil {
					return err
				}
				if current.Status != payment.StatusProcessing {
					return payment.ErrInvalidStatusTransition
				}
				current.AttachTransaction(trx.Token, trx.URL)
				if err := uc.paymentRepo.Update(txCtx, current); err != nil {
					return err
				}
				p = current
				return nil
			})
		},
		nil,
	)

	if err := s.Execute(ctx); err != nil {
		return nil, err
	}

	if !existing {
		logger.FromContext(ctx).Info("gateway transaction created",
			zap.Uint("order_id", o.ID),
			zap.String("token", p.Token),
			zap.Bool("resumed", resumed),
		)
	}
	return &TransactionResponse{
		OrderID:   o.ID,
		PaymentID: p.ID,
		Status:    string(p.Status),
		Token:     p.Token,
		URL:       p.PaymentURL,
	}, nil
}

// GatewayConfirmUseCase 网关回调确认("transaction confirmed")
// 回调内容不可信:以Token查到的支付为准,向网关commit拿最终结果
type GatewayConfirmUseCase struct {
	paymentRepo payment.Repository
	orderRepo   order.Repository
	gateway     payment.Gateway
	confirm     *ConfirmPaymentUseCase
	fail        *FailPaymentUseCase
}

// NewGatewayConfirmUseCase 创建用例
func NewGatewayConfirmUseCase(
	paymentRepo payment.Repository,
	orderRepo order.Repository,
	gateway payment.Gateway,
	confirm *ConfirmPaymentUseCase,
	fail *FailPaymentUseCase,
) *GatewayConfirmUseCase {
	return &GatewayConfirmUseCase{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		gateway:     gateway,
		confirm:     confirm,
		fail:        fail,
	}
}

// Execute 执行确认
func (uc *GatewayConfirmUseCase) Execute(ctx context.Context, req GatewayConfirmRequest) (*Outcome, error) {
	if req.Token == "" {
		return nil, apperrors.ErrInvalidParams
	}

	// 1. 按Token定位支付
	p, err := uc.paymentRepo.FindByToken(ctx, req.Token)
	if err != nil {
		return nil, err
	}
	if req.OrderID != 0 && p.OrderID != req.OrderID {
		return nil, payment.ErrTokenMismatch
	}

	// 2. 已是终态:不再调用网关
	if p.Status.IsTerminal() {
		o, err := uc.orderRepo.FindByID(ctx, p.OrderID)
		if err != nil {
			return nil, err
		}
		out := newOutcome(o, p, nil)
		out.AlreadyProcessed = true
		return out, nil
	}

	// 3. 向网关确认交易
	result, err := uc.gateway.CommitTransaction(ctx, req.Token)
	if err != nil {
		return nil, err
	}

	// 4. 授权且金额一致 → 确认;否则 → 失败
	if result.IsAuthorized() && result.Amount == p.Amount {
		return uc.confirm.Execute(ctx, ConfirmRequest{
			OrderID:     p.OrderID,
			ExternalRef: result.AuthorizationCode,
			Actor:       shared.SystemActor,
		})
	}

	reason := fmt.Sprintf("gateway status=%s response_code=%d", result.Status, result.ResponseCode)
	if result.IsAuthorized() {
		reason = fmt.Sprintf("amount mismatch expected=%d got=%d", p.Amount, result.Amount)
	}
	return uc.fail.Execute(ctx, FailRequest{
		OrderID: p.OrderID,
		Reason:  reason,
		Actor:   shared.SystemActor,
	})
}

// Abort 用户在支付页取消(回跳只带TBK_TOKEN),不调用网关直接标记失败
func (uc *GatewayConfirmUseCase) Abort(ctx context.Context, req GatewayConfirmRequest) (*Outcome, error) {
	if req.Token == "" {
		return nil, apperrors.ErrInvalidParams
	}

	p, err := uc.paymentRepo.FindByToken(ctx, req.Token)
	if err != nil {
		return nil, err
	}
	if req.OrderID != 0 && p.OrderID != req.OrderID {
		return nil, payment.ErrTokenMismatch
	}

	return uc.fail.Execute(ctx, FailRequest{
		OrderID: p.OrderID,
		Reason:  "aborted by user",
		Actor:   shared.SystemActor,
	})
}
