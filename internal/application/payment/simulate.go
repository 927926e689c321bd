package payment

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/order"
	"github.com/xiebiao/autoparts/internal/domain/payment"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

// 模拟场景
const (
	ScenarioRandom  = "random"
	ScenarioSuccess = "success"
	ScenarioPending = "pending"
	ScenarioFailure = "failure"
)

// SimulatePaymentUseCase 模拟支付结果(只在模拟模式下可用)
// random按配置权重抽取:默认成功0.6、待定0.2、失败0.2
type SimulatePaymentUseCase struct {
	orderRepo   order.Repository
	paymentRepo payment.Repository
	gateway     payment.Gateway
	confirm     *ConfirmPaymentUseCase
	fail        *FailPaymentUseCase

	mu   sync.Mutex
	rand func() float64
}

// NewSimulatePaymentUseCase 创建用例
func NewSimulatePaymentUseCase(
	orderRepo order.Repository,
	paymentRepo payment.Repository,
	gateway payment.Gateway,
	confirm *ConfirmPaymentUseCase,
	fail *FailPaymentUseCase,
) *SimulatePaymentUseCase {
	return &SimulatePaymentUseCase{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		gateway:     gateway,
		confirm:     confirm,
		fail:        fail,
		rand:        rand.New(rand.NewSource(time.Now().UnixNano())).Float64,
	}
}

// Execute 执行模拟
func (uc *SimulatePaymentUseCase) Execute(ctx context.Context, req SimulateRequest) (*SimulateResponse, error) {
	info := uc.gateway.Info()
	if !info.Simulation {
		return nil, payment.ErrSimulationDisabled
	}

	scenario := strings.ToLower(strings.TrimSpace(req.Scenario))
	switch scenario {
	case "", ScenarioRandom:
		scenario = uc.pick(info)
	case ScenarioSuccess, ScenarioPending, ScenarioFailure:
	default:
		return nil, payment.ErrInvalidScenario
	}

	o, err := uc.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !req.Actor.IsAdmin() && !o.IsOwnedBy(req.Actor.UserID) {
		return nil, apperrors.ErrForbidden
	}

	var out *Outcome
	switch scenario {
	case ScenarioSuccess:
		out, err = uc.confirm.Execute(ctx, ConfirmRequest{
			OrderID:     o.ID,
			ExternalRef: "SIM-" + uuid.NewString(),
			Actor:       shared.SystemActor,
		})
	case ScenarioFailure:
		out, err = uc.fail.Execute(ctx, FailRequest{
			OrderID: o.ID,
			Reason:  "simulated rejection",
			Actor:   shared.SystemActor,
		})
	default:
		// 待定:不做任何修改,返回当前状态
		var p *payment.Payment
		p, err = uc.paymentRepo.FindByOrderID(ctx, o.ID)
		if err == nil {
			out = newOutcome(o, p, nil)
		}
	}
	if err != nil {
		return nil, err
	}
	return &SimulateResponse{Scenario: scenario, Outcome: out}, nil
}

// pick 按权重抽取场景
func (uc *SimulatePaymentUseCase) pick(info payment.GatewayInfo) string {
	uc.mu.Lock()
	r := uc.rand()
	uc.mu.Unlock()

	switch {
	case r < info.SuccessRate:
		return ScenarioSuccess
	case r < info.SuccessRate+info.PendingRate:
		return ScenarioPending
	default:
		return ScenarioFailure
	}
}
