package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/inventory"
	"github.com/xiebiao/autoparts/internal/domain/order"
	"github.com/xiebiao/autoparts/internal/domain/payment"
	"github.com/xiebiao/autoparts/internal/domain/user"
	"github.com/xiebiao/autoparts/internal/mocks"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

var customer = shared.Actor{UserID: 7, Role: user.RoleCliente}

func TestCreateTransactionUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	req := CreateTransactionRequest{OrderID: 11, ReturnURL: "http://localhost/transbank/return", Actor: customer}

	t.Run("建单成功保存Token", func(t *testing.T) {
		f := newPaymentFixture()
		uc := NewCreateTransactionUseCase(f.orders, f.payments, f.gateway, f.tx, time.Second)
		p := paymentIn(payment.StatusPending)
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(pendingOrder(), nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(p, nil)
		f.payments.On("Update", mock.Anything, p).Return(nil)
		f.gateway.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(r payment.CreateTransactionRequest) bool {
			return r.BuyOrder == "ORD1" && r.Amount == 3000 && r.SessionID != ""
		})).Return(&payment.Transaction{Token: "tok-1", URL: "https://webpay/init"}, nil)

		resp, err := uc.Execute(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "PROCESSING", resp.Status)
		assert.Equal(t, "tok-1", resp.Token)
		assert.Equal(t, "https://webpay/init", resp.URL)
		assert.Equal(t, 2, f.tx.Commits)
	})

	t.Run("已有交易直接返回", func(t *testing.T) {
		f := newPaymentFixture()
		uc := NewCreateTransactionUseCase(f.orders, f.payments, f.gateway, f.tx, time.Second)
		p := paymentIn(payment.StatusProcessing)
		p.AttachTransaction("tok-1", "https://webpay/init")
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(pendingOrder(), nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(p, nil)

		resp, err := uc.Execute(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "tok-1", resp.Token)
		f.gateway.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
		f.payments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("网关失败退回PENDING", func(t *testing.T) {
		f := newPaymentFixture()
		uc := NewCreateTransactionUseCase(f.orders, f.payments, f.gateway, f.tx, time.Second)
		p := paymentIn(payment.StatusPending)
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(pendingOrder(), nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(p, nil)
		f.payments.On("Update", mock.Anything, p).Return(nil)
		f.gateway.On("CreateTransaction", mock.Anything, mock.Anything).Return(nil, apperrors.ErrGatewayError)

		_, err := uc.Execute(ctx, req)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrGatewayError)
		assert.Equal(t, payment.StatusPending, p.Status)
		assert.Empty(t, p.Token)
		f.payments.AssertNumberOfCalls(t, "Update", 2)
	})

	t.Run("非待支付订单不能发起交易", func(t *testing.T) {
		f := newPaymentFixture()
		uc := NewCreateTransactionUseCase(f.orders, f.payments, f.gateway, f.tx, time.Second)
		cancelled := pendingOrder()
		cancelled.Status = order.StatusCancelled
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(cancelled, nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(paymentIn(payment.StatusFailed), nil)

		_, err := uc.Execute(ctx, req)
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	})

	t.Run("不能为他人订单发起交易", func(t *testing.T) {
		f := newPaymentFixture()
		uc := NewCreateTransactionUseCase(f.orders, f.payments, f.gateway, f.tx, time.Second)
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(pendingOrder(), nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(paymentIn(payment.StatusPending), nil)

		_, err := uc.Execute(ctx, CreateTransactionRequest{OrderID: 11, Actor: shared.Actor{UserID: 99, Role: user.RoleCliente}})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("中断遗留的无Token支付可重新发起", func(t *testing.T) {
		f := newPaymentFixture()
		uc := NewCreateTransactionUseCase(f.orders, f.payments, f.gateway, f.tx, time.Second)
		p := paymentIn(payment.StatusProcessing)
		p.UpdatedAt = time.Now().Add(-24 * time.Hour)
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(pendingOrder(), nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(p, nil)
		f.payments.On("Update", mock.Anything, p).Return(nil)
		f.gateway.On("CreateTransaction", mock.Anything, mock.Anything).
			Return(&payment.Transaction{Token: "tok-2", URL: "https://webpay/init"}, nil).Once()

		resp, err := uc.Execute(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "PROCESSING", resp.Status)
		assert.Equal(t, "tok-2", resp.Token)
		f.gateway.AssertNumberOfCalls(t, "CreateTransaction", 1)

		// 之后的重复点击返回同一笔交易
		resp, err = uc.Execute(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "tok-2", resp.Token)
		f.gateway.AssertNumberOfCalls(t, "CreateTransaction", 1)
	})

	t.Run("接管后网关失败保持PROCESSING", func(t *testing.T) {
		f := newPaymentFixture()
		uc := NewCreateTransactionUseCase(f.orders, f.payments, f.gateway, f.tx, time.Second)
		p := paymentIn(payment.StatusProcessing)
		p.UpdatedAt = time.Now().Add(-time.Hour)
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(pendingOrder(), nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(p, nil)
		f.payments.On("Update", mock.Anything, p).Return(nil)
		f.gateway.On("CreateTransaction", mock.Anything, mock.Anything).Return(nil, apperrors.ErrGatewayError)

		_, err := uc.Execute(ctx, req)
		assert.ErrorIs(t, err, apperrors.ErrGatewayError)
		assert.Equal(t, payment.StatusProcessing, p.Status)
		assert.Empty(t, p.Token)
		f.payments.AssertNumberOfCalls(t, "Update", 1)
	})

	t.Run("正在发起中的支付不重复建单", func(t *testing.T) {
		f := newPaymentFixture()
		uc := NewCreateTransactionUseCase(f.orders, f.payments, f.gateway, f.tx, time.Minute)
		p := paymentIn(payment.StatusProcessing)
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(pendingOrder(), nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(p, nil)

		_, err := uc.Execute(ctx, req)
		assert.ErrorIs(t, err, payment.ErrTransactionInProgress)
		f.gateway.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
		f.payments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestGatewayConfirmUseCase_Execute(t *testing.T) {
	ctx := context.Background()

	newUseCase := func(f *paymentFixture) *GatewayConfirmUseCase {
		return NewGatewayConfirmUseCase(f.payments, f.orders, f.gateway, f.confirm, f.fail)
	}

	t.Run("授权成功确认支付", func(t *testing.T) {
		f := newPaymentFixture()
		p := paymentIn(payment.StatusProcessing)
		p.AttachTransaction("tok-1", "u")
		f.payments.On("FindByToken", mock.Anything, "tok-1").Return(p, nil)
		f.gateway.On("CommitTransaction", mock.Anything, "tok-1").Return(&payment.CommitResult{
			Status: payment.GatewayStatusAuthorized, AuthorizationCode: "AUTH9", Amount: 3000,
		}, nil)
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(pendingOrder(), nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(p, nil)
		f.carts.On("FindByID", mock.Anything, uint(5)).Return(checkedOutCart(), nil)
		f.inventory.On("Decrease", mock.Anything, uint(42), uint(1), 3).Return(7, nil)
		f.inventory.On("AppendMovement", mock.Anything, mock.Anything).Return(nil)
		f.payments.On("Update", mock.Anything, p).Return(nil)
		f.orders.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)
		f.expectLowStockCheck(7)

		out, err := newUseCase(f).Execute(ctx, GatewayConfirmRequest{OrderID: 11, Token: "tok-1"})
		require.NoError(t, err)
		assert.Equal(t, "APPROVED", out.PaymentStatus)
		assert.Equal(t, "AUTH9", out.ExternalRef)
	})

	t.Run("金额不一致按失败处理", func(t *testing.T) {
		f := newPaymentFixture()
		p := paymentIn(payment.StatusProcessing)
		f.payments.On("FindByToken", mock.Anything, "tok-1").Return(p, nil)
		f.gateway.On("CommitTransaction", mock.Anything, "tok-1").Return(&payment.CommitResult{
			Status: payment.GatewayStatusAuthorized, AuthorizationCode: "AUTH9", Amount: 10,
		}, nil)
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(pendingOrder(), nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(p, nil)
		f.payments.On("Update", mock.Anything, p).Return(nil)
		f.orders.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)

		out, err := newUseCase(f).Execute(ctx, GatewayConfirmRequest{Token: "tok-1"})
		require.NoError(t, err)
		assert.Equal(t, "FAILED", out.PaymentStatus)
		assert.Contains(t, p.FailureReason, "amount mismatch")
		f.inventory.AssertNotCalled(t, "Decrease", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("网关未返回金额按失败处理", func(t *testing.T) {
		f := newPaymentFixture()
		p := paymentIn(payment.StatusProcessing)
		f.payments.On("FindByToken", mock.Anything, "tok-1").Return(p, nil)
		f.gateway.On("CommitTransaction", mock.Anything, "tok-1").Return(&payment.CommitResult{
			Status: payment.GatewayStatusAuthorized, AuthorizationCode: "AUTH9",
		}, nil)
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(pendingOrder(), nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(p, nil)
		f.payments.On("Update", mock.Anything, p).Return(nil)
		f.orders.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)

		out, err := newUseCase(f).Execute(ctx, GatewayConfirmRequest{Token: "tok-1"})
		require.NoError(t, err)
		assert.Equal(t, "FAILED", out.PaymentStatus)
		assert.Contains(t, p.FailureReason, "expected=3000 got=0")
		f.inventory.AssertNotCalled(t, "Decrease", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("网关拒绝", func(t *testing.T) {
		f := newPaymentFixture()
		p := paymentIn(payment.StatusProcessing)
		f.payments.On("FindByToken", mock.Anything, "tok-1").Return(p, nil)
		f.gateway.On("CommitTransaction", mock.Anything, "tok-1").Return(&payment.CommitResult{
			Status: payment.GatewayStatusFailed, ResponseCode: -1,
		}, nil)
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(pendingOrder(), nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(p, nil)
		f.payments.On("Update", mock.Anything, p).Return(nil)
		f.orders.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)

		out, err := newUseCase(f).Execute(ctx, GatewayConfirmRequest{Token: "tok-1"})
		require.NoError(t, err)
		assert.Equal(t, "FAILED", out.OrderStatus)
		assert.Equal(t, []string{shared.EventPaymentFailed}, f.publisher.Keys())
	})

	t.Run("终态不再调用网关", func(t *testing.T) {
		f := newPaymentFixture()
		p := paymentIn(payment.StatusApproved)
		confirmed := pendingOrder()
		confirmed.Status = order.StatusConfirmed
		f.payments.On("FindByToken", mock.Anything, "tok-1").Return(p, nil)
		f.orders.On("FindByID", mock.Anything, uint(11)).Return(confirmed, nil)

		out, err := newUseCase(f).Execute(ctx, GatewayConfirmRequest{Token: "tok-1"})
		require.NoError(t, err)
		assert.True(t, out.AlreadyProcessed)
		f.gateway.AssertNotCalled(t, "CommitTransaction", mock.Anything, mock.Anything)
	})

	t.Run("Token与订单不匹配", func(t *testing.T) {
		f := newPaymentFixture()
		f.payments.On("FindByToken", mock.Anything, "tok-1").Return(paymentIn(payment.StatusProcessing), nil)

		_, err := newUseCase(f).Execute(ctx, GatewayConfirmRequest{OrderID: 99, Token: "tok-1"})
		assert.ErrorIs(t, err, payment.ErrTokenMismatch)
	})

	t.Run("缺少Token", func(t *testing.T) {
		f := newPaymentFixture()
		_, err := newUseCase(f).Execute(ctx, GatewayConfirmRequest{})
		assert.ErrorIs(t, err, apperrors.ErrInvalidParams)
	})
}

func TestGatewayConfirmUseCase_Abort(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture()
	uc := NewGatewayConfirmUseCase(f.payments, f.orders, f.gateway, f.confirm, f.fail)

	p := paymentIn(payment.StatusProcessing)
	f.payments.On("FindByToken", mock.Anything, "tok-1").Return(p, nil)
	f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(pendingOrder(), nil)
	f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(p, nil)
	f.payments.On("Update", mock.Anything, p).Return(nil)
	f.orders.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)

	out, err := uc.Abort(ctx, GatewayConfirmRequest{OrderID: 11, Token: "tok-1"})
	require.NoError(t, err)
	assert.Equal(t, "FAILED", out.PaymentStatus)
	assert.Equal(t, "aborted by user", p.FailureReason)
	f.gateway.AssertNotCalled(t, "CommitTransaction", mock.Anything, mock.Anything)

	_, err = uc.Abort(ctx, GatewayConfirmRequest{OrderID: 99, Token: "tok-1"})
	assert.ErrorIs(t, err, payment.ErrTokenMismatch)
}

func TestSimulatePaymentUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	simInfo := payment.GatewayInfo{Environment: "integration", Simulation: true, SuccessRate: 0.6, PendingRate: 0.2, FailureRate: 0.2}

	newUseCase := func(f *paymentFixture, r float64) *SimulatePaymentUseCase {
		uc := NewSimulatePaymentUseCase(f.orders, f.payments, f.gateway, f.confirm, f.fail)
		uc.rand = func() float64 { return r }
		return uc
	}

	t.Run("未开启模拟", func(t *testing.T) {
		f := newPaymentFixture()
		f.gateway.On("Info").Return(payment.GatewayInfo{Environment: "production"})
		_, err := newUseCase(f, 0).Execute(ctx, SimulateRequest{OrderID: 11, Scenario: "success", Actor: customer})
		assert.ErrorIs(t, err, payment.ErrSimulationDisabled)
	})

	t.Run("未知场景", func(t *testing.T) {
		f := newPaymentFixture()
		f.gateway.On("Info").Return(simInfo)
		_, err := newUseCase(f, 0).Execute(ctx, SimulateRequest{OrderID: 11, Scenario: "explode", Actor: customer})
		assert.ErrorIs(t, err, payment.ErrInvalidScenario)
	})

	t.Run("随机抽中成功", func(t *testing.T) {
		f := newPaymentFixture()
		f.gateway.On("Info").Return(simInfo)
		p := paymentIn(payment.StatusPending)
		f.orders.On("FindByID", mock.Anything, uint(11)).Return(pendingOrder(), nil)
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(pendingOrder(), nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(p, nil)
		f.carts.On("FindByID", mock.Anything, uint(5)).Return(checkedOutCart(), nil)
		f.inventory.On("Decrease", mock.Anything, uint(42), uint(1), 3).Return(7, nil)
		f.inventory.On("AppendMovement", mock.Anything, mock.MatchedBy(func(m *inventory.Movement) bool {
			return m.Type == inventory.MovementSale
		})).Return(nil)
		f.payments.On("Update", mock.Anything, p).Return(nil)
		f.orders.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)
		f.expectLowStockCheck(7)

		resp, err := newUseCase(f, 0.1).Execute(ctx, SimulateRequest{OrderID: 11, Actor: customer})
		require.NoError(t, err)
		assert.Equal(t, ScenarioSuccess, resp.Scenario)
		assert.Equal(t, "APPROVED", resp.Outcome.PaymentStatus)
		assert.Contains(t, resp.Outcome.ExternalRef, "SIM-")
	})

	t.Run("随机抽中待定不改状态", func(t *testing.T) {
		f := newPaymentFixture()
		f.gateway.On("Info").Return(simInfo)
		f.orders.On("FindByID", mock.Anything, uint(11)).Return(pendingOrder(), nil)
		f.payments.On("FindByOrderID", mock.Anything, uint(11)).Return(paymentIn(payment.StatusPending), nil)

		resp, err := newUseCase(f, 0.7).Execute(ctx, SimulateRequest{OrderID: 11, Scenario: "random", Actor: customer})
		require.NoError(t, err)
		assert.Equal(t, ScenarioPending, resp.Scenario)
		assert.Equal(t, "PENDING", resp.Outcome.PaymentStatus)
		f.payments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("指定失败", func(t *testing.T) {
		f := newPaymentFixture()
		f.gateway.On("Info").Return(simInfo)
		p := paymentIn(payment.StatusPending)
		f.orders.On("FindByID", mock.Anything, uint(11)).Return(pendingOrder(), nil)
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(pendingOrder(), nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(p, nil)
		f.payments.On("Update", mock.Anything, p).Return(nil)
		f.orders.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)

		resp, err := newUseCase(f, 0).Execute(ctx, SimulateRequest{OrderID: 11, Scenario: "FAILURE", Actor: customer})
		require.NoError(t, err)
		assert.Equal(t, ScenarioFailure, resp.Scenario)
		assert.Equal(t, "FAILED", resp.Outcome.PaymentStatus)
	})

	t.Run("不能模拟他人订单", func(t *testing.T) {
		f := newPaymentFixture()
		f.gateway.On("Info").Return(simInfo)
		f.orders.On("FindByID", mock.Anything, uint(11)).Return(pendingOrder(), nil)

		_, err := newUseCase(f, 0).Execute(ctx, SimulateRequest{OrderID: 11, Scenario: "success",
			Actor: shared.Actor{UserID: 8, Role: user.RoleCliente}})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestStatsUseCase_Execute(t *testing.T) {
	f := newPaymentFixture()
	stats := new(mocks.StatsRepository)
	stats.On("PaymentsByStatus", mock.Anything).Return([]payment.StatusCount{
		{Status: "APPROVED", Count: 3, Amount: 90000},
		{Status: "FAILED", Count: 1, Amount: 5000},
	}, nil)
	stats.On("OrdersByStatus", mock.Anything).Return([]payment.StatusCount{{Status: "CONFIRMED", Count: 3, Amount: 90000}}, nil)
	stats.On("TopProducts", mock.Anything, 5).Return([]payment.ProductSales{{ProductID: 42, Name: "Filtro", Quantity: 9}}, nil)
	f.gateway.On("Info").Return(payment.GatewayInfo{Environment: "integration"})

	resp, err := NewStatsUseCase(stats, f.gateway).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(90000), resp.ApprovedAmount)
	assert.Len(t, resp.Payments, 2)
	assert.Equal(t, uint(42), resp.TopProducts[0].ProductID)
	assert.Equal(t, "integration", resp.Gateway.Environment)
}
