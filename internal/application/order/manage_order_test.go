package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/cart"
	"github.com/xiebiao/autoparts/internal/domain/inventory"
	"github.com/xiebiao/autoparts/internal/domain/order"
	"github.com/xiebiao/autoparts/internal/domain/payment"
	"github.com/xiebiao/autoparts/internal/domain/user"
	"github.com/xiebiao/autoparts/internal/mocks"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

var admin = shared.Actor{UserID: 1, Role: user.RoleAdmin}

func orderIn(status order.Status) *order.Order {
	o := order.NewOrder("ORD1", 5, 7, "Main St 1", "WEBPAY", 3000)
	o.ID = 11
	o.Status = status
	return o
}

type cancelFixture struct {
	orders    *mocks.OrderRepository
	carts     *mocks.CartRepository
	payments  *mocks.PaymentRepository
	audits    *mocks.AuditRepository
	inventory *mocks.InventoryRepository
	cache     *mocks.CacheInvalidator
	publisher *mocks.Publisher
	uc        *CancelOrderUseCase
}

func newCancelFixture() *cancelFixture {
	f := &cancelFixture{
		orders:    new(mocks.OrderRepository),
		carts:     new(mocks.CartRepository),
		payments:  new(mocks.PaymentRepository),
		audits:    new(mocks.AuditRepository),
		inventory: new(mocks.InventoryRepository),
		cache:     new(mocks.CacheInvalidator),
		publisher: &mocks.Publisher{},
	}
	f.uc = NewCancelOrderUseCase(f.orders, f.carts, f.payments, f.audits,
		inventory.NewService(f.inventory), &mocks.Transactor{}, f.cache, f.publisher)
	f.audits.On("Append", mock.Anything, mock.Anything).Return(nil)
	return f
}

func TestCancelOrderUseCase_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("顾客取消待支付订单,支付记录同时失败", func(t *testing.T) {
		f := newCancelFixture()
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(orderIn(order.StatusPending), nil)
		f.orders.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).
			Return(&payment.Payment{ID: 3, OrderID: 11, Status: payment.StatusProcessing}, nil)
		f.payments.On("Update", mock.Anything, mock.MatchedBy(func(p *payment.Payment) bool {
			return p.Status == payment.StatusFailed
		})).Return(nil)

		out, err := f.uc.Execute(ctx, CancelOrderRequest{OrderID: 11, Actor: customer})
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", out.Status)
		f.inventory.AssertNotCalled(t, "Increase", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.payments.AssertExpectations(t)
		assert.Equal(t, []string{shared.EventOrderCancelled}, f.publisher.Keys())
	})

	t.Run("管理员取消已确认订单退回库存", func(t *testing.T) {
		f := newCancelFixture()
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(orderIn(order.StatusConfirmed), nil)
		f.orders.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)
		f.carts.On("FindByID", mock.Anything, uint(5)).Return(&cart.Cart{ID: 5, Lines: []cart.Line{
			{ProductID: 42, BranchID: 1, Quantity: 3},
			{ProductID: 43, BranchID: 2, Quantity: 1},
		}}, nil)
		f.inventory.On("Increase", mock.Anything, uint(42), uint(1), 3).Return(10, nil)
		f.inventory.On("Increase", mock.Anything, uint(43), uint(2), 1).Return(4, nil)
		f.inventory.On("AppendMovement", mock.Anything, mock.MatchedBy(func(m *inventory.Movement) bool {
			return m.Type == inventory.MovementReturn && m.OrderID == 11 && m.Quantity > 0
		})).Return(nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).
			Return(&payment.Payment{ID: 3, Status: payment.StatusApproved}, nil)

		_, err := f.uc.Execute(ctx, CancelOrderRequest{OrderID: 11, Actor: admin, Reason: "cliente desiste"})
		require.NoError(t, err)
		f.inventory.AssertNumberOfCalls(t, "AppendMovement", 2)
		assert.ElementsMatch(t, []uint{42, 43}, f.cache.Invalidated)
		// 已收款的支付不退款,保持APPROVED
		f.payments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("顾客不能取消已确认订单", func(t *testing.T) {
		f := newCancelFixture()
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(orderIn(order.StatusConfirmed), nil)

		_, err := f.uc.Execute(ctx, CancelOrderRequest{OrderID: 11, Actor: customer})
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	})

	t.Run("不能取消他人订单", func(t *testing.T) {
		f := newCancelFixture()
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(orderIn(order.StatusPending), nil)

		_, err := f.uc.Execute(ctx, CancelOrderRequest{OrderID: 11, Actor: shared.Actor{UserID: 8, Role: user.RoleCliente}})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("已交付订单不能取消", func(t *testing.T) {
		f := newCancelFixture()
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(orderIn(order.StatusDelivered), nil)

		_, err := f.uc.Execute(ctx, CancelOrderRequest{OrderID: 11, Actor: admin})
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	})
}

func TestDeliverOrderUseCase_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("已确认订单可交付", func(t *testing.T) {
		orders := new(mocks.OrderRepository)
		audits := new(mocks.AuditRepository)
		uc := NewDeliverOrderUseCase(orders, audits, &mocks.Transactor{})
		orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(orderIn(order.StatusConfirmed), nil)
		orders.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)
		audits.On("Append", mock.Anything, mock.Anything).Return(nil)

		out, err := uc.Execute(ctx, 11, admin)
		require.NoError(t, err)
		assert.Equal(t, "DELIVERED", out.Status)
	})

	t.Run("待支付订单不能交付", func(t *testing.T) {
		orders := new(mocks.OrderRepository)
		uc := NewDeliverOrderUseCase(orders, new(mocks.AuditRepository), &mocks.Transactor{})
		orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(orderIn(order.StatusPending), nil)

		_, err := uc.Execute(ctx, 11, admin)
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	})

	t.Run("只有管理员可以操作", func(t *testing.T) {
		uc := NewDeliverOrderUseCase(new(mocks.OrderRepository), new(mocks.AuditRepository), &mocks.Transactor{})
		_, err := uc.Execute(ctx, 11, customer)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestQueryOrders(t *testing.T) {
	ctx := context.Background()

	t.Run("订单详情包含明细和支付", func(t *testing.T) {
		orders := new(mocks.OrderRepository)
		carts := new(mocks.CartRepository)
		payments := new(mocks.PaymentRepository)
		uc := NewGetOrderUseCase(orders, carts, payments)

		orders.On("FindByID", mock.Anything, uint(11)).Return(orderIn(order.StatusPending), nil)
		carts.On("FindByID", mock.Anything, uint(5)).Return(&cart.Cart{ID: 5, Lines: []cart.Line{{ProductID: 42, Quantity: 3, UnitPrice: 1000, LineTotal: 3000}}}, nil)
		payments.On("FindByOrderID", mock.Anything, uint(11)).Return(nil, payment.ErrPaymentNotFound)

		out, err := uc.Execute(ctx, 11, customer)
		require.NoError(t, err)
		assert.Len(t, out.Lines, 1)
		assert.Nil(t, out.Payment)

		_, err = uc.Execute(ctx, 11, shared.Actor{UserID: 8, Role: user.RoleCliente})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("按订单号查询", func(t *testing.T) {
		orders := new(mocks.OrderRepository)
		carts := new(mocks.CartRepository)
		payments := new(mocks.PaymentRepository)
		uc := NewGetOrderUseCase(orders, carts, payments)

		orders.On("FindByOrderNo", mock.Anything, "ORD-20240101-0001").Return(orderIn(order.StatusPending), nil)
		orders.On("FindByOrderNo", mock.Anything, "ORD-MISSING").Return(nil, order.ErrOrderNotFound)
		carts.On("FindByID", mock.Anything, uint(5)).Return(&cart.Cart{ID: 5}, nil)
		payments.On("FindByOrderID", mock.Anything, uint(11)).Return(payment.NewPayment(11, 3000, payment.MethodWebpay), nil)

		out, err := uc.ExecuteByNo(ctx, " ORD-20240101-0001 ", customer)
		require.NoError(t, err)
		assert.Equal(t, uint(11), out.ID)
		require.NotNil(t, out.Payment)

		_, err = uc.ExecuteByNo(ctx, "ORD-20240101-0001", shared.Actor{UserID: 8, Role: user.RoleCliente})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)

		_, err = uc.ExecuteByNo(ctx, "ORD-MISSING", admin)
		assert.ErrorIs(t, err, order.ErrOrderNotFound)

		_, err = uc.ExecuteByNo(ctx, "  ", admin)
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
		orders.AssertNumberOfCalls(t, "FindByOrderNo", 2)
	})

	t.Run("顾客只能查自己的订单", func(t *testing.T) {
		orders := new(mocks.OrderRepository)
		uc := NewListOrdersUseCase(orders)
		orders.On("List", mock.Anything, order.ListFilter{UserID: 7, Status: order.StatusPending, Page: 1, PageSize: 20}).
			Return([]*order.Order{orderIn(order.StatusPending)}, int64(1), nil)

		out, err := uc.Execute(ctx, ListOrdersRequest{UserID: 99, Status: "PENDING", Actor: customer})
		require.NoError(t, err)
		assert.Equal(t, int64(1), out.Total)
		assert.Len(t, out.Items, 1)
	})

	t.Run("非法状态筛选", func(t *testing.T) {
		uc := NewListOrdersUseCase(new(mocks.OrderRepository))
		_, err := uc.Execute(ctx, ListOrdersRequest{Status: "SHIPPED", Actor: admin})
		assert.ErrorIs(t, err, order.ErrInvalidStatus)
	})
}
