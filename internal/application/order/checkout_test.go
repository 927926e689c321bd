package order

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/cart"
	"github.com/xiebiao/autoparts/internal/domain/order"
	"github.com/xiebiao/autoparts/internal/domain/payment"
	"github.com/xiebiao/autoparts/internal/domain/user"
	"github.com/xiebiao/autoparts/internal/mocks"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

type checkoutFixture struct {
	carts     *mocks.CartRepository
	orders    *mocks.OrderRepository
	payments  *mocks.PaymentRepository
	users     *mocks.UserRepository
	audits    *mocks.AuditRepository
	tx        *mocks.Transactor
	publisher *mocks.Publisher
	uc        *CheckoutUseCase
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		carts:     new(mocks.CartRepository),
		orders:    new(mocks.OrderRepository),
		payments:  new(mocks.PaymentRepository),
		users:     new(mocks.UserRepository),
		audits:    new(mocks.AuditRepository),
		tx:        &mocks.Transactor{},
		publisher: &mocks.Publisher{},
	}
	f.uc = NewCheckoutUseCase(f.carts, f.orders, f.payments, f.users, f.audits, f.tx, f.publisher)
	return f
}

func cartWithLines() *cart.Cart {
	c := cart.NewCart(nil)
	c.ID = 5
	c.Lines = []cart.Line{
		{CartID: 5, ProductID: 42, BranchID: 1, Quantity: 3, UnitPrice: 1000, LineTotal: 3000},
	}
	return c
}

var customer = shared.Actor{UserID: 7, Role: user.RoleCliente}

func TestCheckoutUseCase_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("结账生成待支付订单和支付记录", func(t *testing.T) {
		f := newCheckoutFixture()
		f.carts.On("FindByIDForUpdate", mock.Anything, uint(5)).Return(cartWithLines(), nil)
		f.users.On("FindByID", mock.Anything, uint(7)).Return(&user.User{ID: 7}, nil)
		f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o *order.Order) bool {
			return o.CartID == 5 && o.UserID == 7 && o.Total == 3000 &&
				o.Status == order.StatusPending && o.Address == "Main St 1"
		})).Return(nil)
		f.payments.On("Create", mock.Anything, mock.MatchedBy(func(p *payment.Payment) bool {
			return p.OrderID == 1 && p.Amount == 3000 && p.Status == payment.StatusPending
		})).Return(nil)
		f.carts.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(c *cart.Cart) bool {
			return c.Status == cart.StatusCheckedOut
		})).Return(nil)
		f.audits.On("Append", mock.Anything, mock.Anything).Return(nil)

		out, err := f.uc.Execute(ctx, CheckoutRequest{CartID: 5, Address: " Main St 1 ", Actor: customer})
		require.NoError(t, err)
		assert.Equal(t, uint(1), out.OrderID)
		assert.Equal(t, "PENDING", out.Status)
		assert.Equal(t, "PENDING", out.PaymentStatus)
		assert.Equal(t, "WEBPAY", out.PaymentMethod)
		assert.Equal(t, int64(3000), out.Total)
		assert.Equal(t, []string{shared.EventOrderCheckedOut}, f.publisher.Keys())
		assert.Equal(t, 1, f.tx.Commits)
	})

	t.Run("空购物车", func(t *testing.T) {
		f := newCheckoutFixture()
		empty := cart.NewCart(nil)
		empty.ID = 5
		f.carts.On("FindByIDForUpdate", mock.Anything, uint(5)).Return(empty, nil)

		_, err := f.uc.Execute(ctx, CheckoutRequest{CartID: 5, Address: "Main St 1", Actor: customer})
		assert.ErrorIs(t, err, cart.ErrEmptyCart)
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.Events)
	})

	t.Run("购物车不存在", func(t *testing.T) {
		f := newCheckoutFixture()
		f.carts.On("FindByIDForUpdate", mock.Anything, uint(5)).Return(nil, cart.ErrCartNotFound)

		_, err := f.uc.Execute(ctx, CheckoutRequest{CartID: 5, Address: "Main St 1", Actor: customer})
		assert.ErrorIs(t, err, cart.ErrCartNotFound)
	})

	t.Run("用户不存在", func(t *testing.T) {
		f := newCheckoutFixture()
		f.carts.On("FindByIDForUpdate", mock.Anything, uint(5)).Return(cartWithLines(), nil)
		f.users.On("FindByID", mock.Anything, uint(7)).Return(nil, apperrors.ErrUserNotFound)

		_, err := f.uc.Execute(ctx, CheckoutRequest{CartID: 5, Address: "Main St 1", Actor: customer})
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("支付记录写入失败整体回滚", func(t *testing.T) {
		f := newCheckoutFixture()
		f.carts.On("FindByIDForUpdate", mock.Anything, uint(5)).Return(cartWithLines(), nil)
		f.users.On("FindByID", mock.Anything, uint(7)).Return(&user.User{ID: 7}, nil)
		f.orders.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.payments.On("Create", mock.Anything, mock.Anything).
			Return(apperrors.Wrap(errors.New("connection reset"), "创建支付记录失败"))

		_, err := f.uc.Execute(ctx, CheckoutRequest{CartID: 5, Address: "Main St 1", Actor: customer})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeDatabaseError, apperrors.GetAppError(err).Code)
		assert.Equal(t, 1, f.tx.Rollbacks)
		f.carts.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.Events)
	})

	t.Run("不能结算他人的购物车", func(t *testing.T) {
		f := newCheckoutFixture()
		owner := uint(99)
		c := cartWithLines()
		c.UserID = &owner
		f.carts.On("FindByIDForUpdate", mock.Anything, uint(5)).Return(c, nil)

		_, err := f.uc.Execute(ctx, CheckoutRequest{CartID: 5, Address: "Main St 1", Actor: customer})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("管理员代客下单", func(t *testing.T) {
		f := newCheckoutFixture()
		f.carts.On("FindByIDForUpdate", mock.Anything, uint(5)).Return(cartWithLines(), nil)
		f.users.On("FindByID", mock.Anything, uint(30)).Return(&user.User{ID: 30}, nil)
		f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o *order.Order) bool { return o.UserID == 30 })).Return(nil)
		f.payments.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.carts.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)
		f.audits.On("Append", mock.Anything, mock.Anything).Return(nil)

		admin := shared.Actor{UserID: 1, Role: user.RoleAdmin}
		_, err := f.uc.Execute(ctx, CheckoutRequest{CartID: 5, UserID: 30, Address: "Main St 1", PaymentMethod: "transferencia", Actor: admin})
		require.NoError(t, err)
		f.orders.AssertExpectations(t)
	})

	t.Run("参数校验在访问数据库之前", func(t *testing.T) {
		f := newCheckoutFixture()
		_, err := f.uc.Execute(ctx, CheckoutRequest{CartID: 5, Address: "  ", Actor: customer})
		assert.ErrorIs(t, err, order.ErrInvalidAddress)

		_, err = f.uc.Execute(ctx, CheckoutRequest{CartID: 5, Address: "x", PaymentMethod: "BITCOIN", Actor: customer})
		assert.ErrorIs(t, err, payment.ErrInvalidMethod)

		assert.Equal(t, 0, f.tx.Commits+f.tx.Rollbacks)
	})
}
