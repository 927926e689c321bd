package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	invapp "github.com/xiebiao/autoparts/internal/application/inventory"
	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/audit"
	"github.com/xiebiao/autoparts/internal/domain/cart"
	"github.com/xiebiao/autoparts/internal/domain/catalog"
	"github.com/xiebiao/autoparts/internal/domain/inventory"
	"github.com/xiebiao/autoparts/internal/domain/order"
	"github.com/xiebiao/autoparts/internal/domain/payment"
	"github.com/xiebiao/autoparts/internal/domain/user"
	"github.com/xiebiao/autoparts/internal/mocks"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

type paymentFixture struct {
	orders    *mocks.OrderRepository
	carts     *mocks.CartRepository
	payments  *mocks.PaymentRepository
	audits    *mocks.AuditRepository
	products  *mocks.ProductRepository
	inventory *mocks.InventoryRepository
	gateway   *mocks.Gateway
	tx        *mocks.Transactor
	cache     *mocks.CacheInvalidator
	publisher *mocks.Publisher

	confirm *ConfirmPaymentUseCase
	fail    *FailPaymentUseCase
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		orders:    new(mocks.OrderRepository),
		carts:     new(mocks.CartRepository),
		payments:  new(mocks.PaymentRepository),
		audits:    new(mocks.AuditRepository),
		products:  new(mocks.ProductRepository),
		inventory: new(mocks.InventoryRepository),
		gateway:   new(mocks.Gateway),
		tx:        &mocks.Transactor{},
		cache:     new(mocks.CacheInvalidator),
		publisher: &mocks.Publisher{},
	}
	checker := invapp.NewLowStockChecker(f.products, f.inventory, f.publisher)
	f.confirm = NewConfirmPaymentUseCase(f.orders, f.carts, f.payments, f.audits,
		inventory.NewService(f.inventory), f.tx, f.cache, checker, f.publisher)
	f.fail = NewFailPaymentUseCase(f.orders, f.payments, f.audits, f.tx, f.publisher)
	f.audits.On("Append", mock.Anything, mock.Anything).Return(nil)
	return f
}

// pendingOrder 用户7的订单:购物车5,3件商品42(门店1),单价1000
func pendingOrder() *order.Order {
	o := order.NewOrder("ORD1", 5, 7, "Main St 1", "WEBPAY", 3000)
	o.ID = 11
	return o
}

func paymentIn(status payment.Status) *payment.Payment {
	p := payment.NewPayment(11, 3000, payment.MethodWebpay)
	p.ID = 3
	p.Status = status
	return p
}

func checkedOutCart() *cart.Cart {
	return &cart.Cart{ID: 5, Status: cart.StatusCheckedOut, Lines: []cart.Line{
		{CartID: 5, ProductID: 42, BranchID: 1, Quantity: 3, UnitPrice: 1000, LineTotal: 3000},
	}}
}

// expectLowStockCheck 扣减后的低库存检查
func (f *paymentFixture) expectLowStockCheck(total int) {
	f.products.On("FindByIDs", mock.Anything, []uint{42}).
		Return([]*catalog.Product{{ID: 42, SKU: "FIL-001", StockMin: 2}}, nil)
	f.inventory.On("TotalStocks", mock.Anything, []uint{42}).Return(map[uint]int{42: total}, nil)
}

func TestConfirmPaymentUseCase_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("确认支付扣减库存", func(t *testing.T) {
		f := newPaymentFixture()
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(pendingOrder(), nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(paymentIn(payment.StatusProcessing), nil)
		f.carts.On("FindByID", mock.Anything, uint(5)).Return(checkedOutCart(), nil)
		f.inventory.On("Decrease", mock.Anything, uint(42), uint(1), 3).Return(7, nil).Once()
		f.inventory.On("AppendMovement", mock.Anything, mock.MatchedBy(func(m *inventory.Movement) bool {
			return m.Type == inventory.MovementSale && m.Quantity == -3 && m.OrderID == 11
		})).Return(nil)
		f.payments.On("Update", mock.Anything, mock.MatchedBy(func(p *payment.Payment) bool {
			return p.Status == payment.StatusApproved && p.ExternalRef == "AUTH123" && p.ProcessedAt != nil
		})).Return(nil)
		f.orders.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(o *order.Order) bool {
			return o.Status == order.StatusConfirmed
		})).Return(nil)
		f.expectLowStockCheck(7)

		out, err := f.confirm.Execute(ctx, ConfirmRequest{OrderID: 11, ExternalRef: "AUTH123", Actor: shared.SystemActor})
		require.NoError(t, err)
		assert.Equal(t, "CONFIRMED", out.OrderStatus)
		assert.Equal(t, "APPROVED", out.PaymentStatus)
		assert.False(t, out.AlreadyProcessed)
		require.Len(t, out.Products, 1)
		assert.Equal(t, ProductOutcome{ProductID: 42, BranchID: 1, Quantity: 3, StockAfter: 7}, out.Products[0])
		assert.Equal(t, []uint{42}, f.cache.Invalidated)
		assert.Equal(t, []string{shared.EventPaymentApproved}, f.publisher.Keys())
	})

	t.Run("多行购物车逐行扣减", func(t *testing.T) {
		f := newPaymentFixture()
		twoLines := &cart.Cart{ID: 5, Status: cart.StatusCheckedOut, Lines: []cart.Line{
			{CartID: 5, ProductID: 1, BranchID: 1, Quantity: 2, UnitPrice: 1000, LineTotal: 2000},
			{CartID: 5, ProductID: 2, BranchID: 1, Quantity: 1, UnitPrice: 500, LineTotal: 500},
		}}
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(pendingOrder(), nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(paymentIn(payment.StatusProcessing), nil)
		f.carts.On("FindByID", mock.Anything, uint(5)).Return(twoLines, nil)
		f.inventory.On("Decrease", mock.Anything, uint(1), uint(1), 2).Return(8, nil).Once()
		f.inventory.On("Decrease", mock.Anything, uint(2), uint(1), 1).Return(4, nil).Once()
		f.inventory.On("AppendMovement", mock.Anything, mock.Anything).Return(nil)
		f.payments.On("Update", mock.Anything, mock.Anything).Return(nil)
		f.orders.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)
		f.products.On("FindByIDs", mock.Anything, mock.Anything).Return([]*catalog.Product{}, nil)
		f.inventory.On("TotalStocks", mock.Anything, mock.Anything).Return(map[uint]int{}, nil)

		out, err := f.confirm.Execute(ctx, ConfirmRequest{OrderID: 11, ExternalRef: "AUTH123", Actor: shared.SystemActor})
		require.NoError(t, err)
		assert.Equal(t, []ProductOutcome{
			{ProductID: 1, BranchID: 1, Quantity: 2, StockAfter: 8},
			{ProductID: 2, BranchID: 1, Quantity: 1, StockAfter: 4},
		}, out.Products)
		f.inventory.AssertNumberOfCalls(t, "Decrease", 2)
		f.inventory.AssertNumberOfCalls(t, "AppendMovement", 2)
		assert.ElementsMatch(t, []uint{1, 2}, f.cache.Invalidated)
	})

	t.Run("补货后确认解除对账标记", func(t *testing.T) {
		f := newPaymentFixture()
		flagged := paymentIn(payment.StatusProcessing)
		flagged.FlagReconciliation("AUTH123", "insufficient stock product=42 branch=1 requested=3")
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(pendingOrder(), nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(flagged, nil)
		f.carts.On("FindByID", mock.Anything, uint(5)).Return(checkedOutCart(), nil)
		f.inventory.On("Decrease", mock.Anything, uint(42), uint(1), 3).Return(7, nil)
		f.inventory.On("AppendMovement", mock.Anything, mock.Anything).Return(nil)
		f.payments.On("Update", mock.Anything, flagged).Return(nil)
		f.orders.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)
		f.expectLowStockCheck(7)

		out, err := f.confirm.Execute(ctx, ConfirmRequest{OrderID: 11, ExternalRef: "AUTH123", Actor: shared.SystemActor})
		require.NoError(t, err)
		assert.Equal(t, "APPROVED", out.PaymentStatus)
		assert.False(t, flagged.NeedsReconciliation)
		assert.Empty(t, flagged.FailureReason)

		var actions []string
		for _, call := range f.audits.Calls {
			actions = append(actions, call.Arguments.Get(1).(*audit.Entry).Action)
		}
		assert.Contains(t, actions, "reconciliation resolved order=ORD1 ref=AUTH123")
	})

	t.Run("终态上重复确认是空操作", func(t *testing.T) {
		f := newPaymentFixture()
		confirmed := pendingOrder()
		confirmed.Status = order.StatusConfirmed
		approved := paymentIn(payment.StatusApproved)
		approved.ExternalRef = "AUTH123"
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(confirmed, nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(approved, nil)

		out, err := f.confirm.Execute(ctx, ConfirmRequest{OrderID: 11, ExternalRef: "AUTH123", Actor: shared.SystemActor})
		require.NoError(t, err)
		assert.True(t, out.AlreadyProcessed)
		assert.Equal(t, "CONFIRMED", out.OrderStatus)
		f.inventory.AssertNotCalled(t, "Decrease", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.payments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.Events)
	})

	t.Run("已失败的支付不能再确认", func(t *testing.T) {
		f := newPaymentFixture()
		failed := pendingOrder()
		failed.Status = order.StatusFailed
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(failed, nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(paymentIn(payment.StatusFailed), nil)

		out, err := f.confirm.Execute(ctx, ConfirmRequest{OrderID: 11, ExternalRef: "AUTH123", Actor: shared.SystemActor})
		require.NoError(t, err)
		assert.True(t, out.AlreadyProcessed)
		assert.Equal(t, "FAILED", out.PaymentStatus)
	})

	t.Run("库存不足标记人工对账", func(t *testing.T) {
		f := newPaymentFixture()
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(pendingOrder(), nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).
			Return(paymentIn(payment.StatusProcessing), nil).Once()
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).
			Return(paymentIn(payment.StatusProcessing), nil).Once()
		f.carts.On("FindByID", mock.Anything, uint(5)).Return(checkedOutCart(), nil)
		f.inventory.On("Decrease", mock.Anything, uint(42), uint(1), 3).Return(0, inventory.ErrInsufficientStock)
		f.payments.On("Update", mock.Anything, mock.MatchedBy(func(p *payment.Payment) bool {
			return p.NeedsReconciliation && p.Status == payment.StatusProcessing && p.ExternalRef == "AUTH123"
		})).Return(nil).Once()

		_, err := f.confirm.Execute(ctx, ConfirmRequest{OrderID: 11, ExternalRef: "AUTH123", Actor: shared.SystemActor})
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrStockReconciliation)
		assert.True(t, apperrors.IsServerError(apperrors.GetAppError(err).Code))
		// 扣减事务回滚,对账事务提交
		assert.Equal(t, 1, f.tx.Rollbacks)
		assert.Equal(t, 1, f.tx.Commits)
		f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
		assert.Equal(t, []string{shared.EventPaymentReconciliation}, f.publisher.Keys())
	})

	t.Run("存储失败整体回滚", func(t *testing.T) {
		f := newPaymentFixture()
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(pendingOrder(), nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(paymentIn(payment.StatusProcessing), nil)
		f.carts.On("FindByID", mock.Anything, uint(5)).Return(checkedOutCart(), nil)
		f.inventory.On("Decrease", mock.Anything, uint(42), uint(1), 3).Return(7, nil)
		f.inventory.On("AppendMovement", mock.Anything, mock.Anything).Return(nil)
		f.payments.On("Update", mock.Anything, mock.Anything).
			Return(apperrors.Wrap(errors.New("deadlock"), "更新支付失败"))

		_, err := f.confirm.Execute(ctx, ConfirmRequest{OrderID: 11, ExternalRef: "AUTH123", Actor: shared.SystemActor})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeDatabaseError, apperrors.GetAppError(err).Code)
		assert.Equal(t, 1, f.tx.Rollbacks)
		assert.Empty(t, f.cache.Invalidated)
		assert.Empty(t, f.publisher.Events)
	})

	t.Run("顾客不能直接确认支付", func(t *testing.T) {
		f := newPaymentFixture()
		_, err := f.confirm.Execute(ctx, ConfirmRequest{OrderID: 11, Actor: shared.Actor{UserID: 7, Role: user.RoleCliente}})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("管理员手动确认必须带外部交易号", func(t *testing.T) {
		f := newPaymentFixture()
		_, err := f.confirm.Execute(ctx, ConfirmRequest{OrderID: 11, ExternalRef: " ", Actor: shared.Actor{UserID: 1, Role: user.RoleAdmin}})
		assert.ErrorIs(t, err, payment.ErrMissingExternalRef)
		f.orders.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
		assert.Equal(t, 0, f.tx.Commits+f.tx.Rollbacks)
	})
}

func TestFailPaymentUseCase_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("支付失败不动库存", func(t *testing.T) {
		f := newPaymentFixture()
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(pendingOrder(), nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(paymentIn(payment.StatusProcessing), nil)
		f.payments.On("Update", mock.Anything, mock.MatchedBy(func(p *payment.Payment) bool {
			return p.Status == payment.StatusFailed && p.FailureReason == "rejected"
		})).Return(nil)
		f.orders.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(o *order.Order) bool {
			return o.Status == order.StatusFailed
		})).Return(nil)

		out, err := f.fail.Execute(ctx, FailRequest{OrderID: 11, Reason: "rejected", Actor: shared.SystemActor})
		require.NoError(t, err)
		assert.Equal(t, "FAILED", out.OrderStatus)
		assert.Equal(t, "FAILED", out.PaymentStatus)
		f.inventory.AssertNotCalled(t, "Decrease", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, []string{shared.EventPaymentFailed}, f.publisher.Keys())
	})

	t.Run("重复失败回调是空操作", func(t *testing.T) {
		f := newPaymentFixture()
		failed := pendingOrder()
		failed.Status = order.StatusFailed
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(failed, nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(paymentIn(payment.StatusFailed), nil)

		out, err := f.fail.Execute(ctx, FailRequest{OrderID: 11, Reason: "rejected", Actor: shared.SystemActor})
		require.NoError(t, err)
		assert.True(t, out.AlreadyProcessed)
		f.payments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("其他顾客不能标记失败", func(t *testing.T) {
		f := newPaymentFixture()
		f.orders.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(pendingOrder(), nil)
		f.payments.On("FindByOrderIDForUpdate", mock.Anything, uint(11)).Return(paymentIn(payment.StatusPending), nil)

		_, err := f.fail.Execute(ctx, FailRequest{OrderID: 11, Actor: shared.Actor{UserID: 8, Role: user.RoleCliente}})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}
