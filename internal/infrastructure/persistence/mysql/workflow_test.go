package mysql

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	invapp "github.com/xiebiao/autoparts/internal/application/inventory"
	apporder "github.com/xiebiao/autoparts/internal/application/order"
	apppayment "github.com/xiebiao/autoparts/internal/application/payment"
	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/cart"
	"github.com/xiebiao/autoparts/internal/domain/inventory"
	"github.com/xiebiao/autoparts/internal/domain/payment"
	"github.com/xiebiao/autoparts/internal/domain/user"
)

// 结账 → 确认支付的完整流程,使用真实仓储和事务

// failingPaymentRepo 订单写入后模拟存储故障
type failingPaymentRepo struct {
	payment.Repository
}

func (failingPaymentRepo) Create(context.Context, *payment.Payment) error {
	return errors.New("simulated storage failure")
}

type workflowLine struct {
	productID uint
	branchID  uint
	quantity  int
	price     int64
}

// newCheckedInCart 建用户和购物车并加入明细
func newCheckedInCart(t *testing.T, db *gorm.DB, lines ...workflowLine) (*user.User, *cart.Cart) {
	t.Helper()
	ctx := context.Background()

	u := &user.User{FullName: "Ana Pérez", RUT: "12345678-5", Email: "ana@example.cl", Password: "x", Role: user.RoleCliente}
	require.NoError(t, NewUserRepository(db).Create(ctx, u))

	carts := NewCartRepository(db)
	c := cart.NewCart(&u.ID)
	require.NoError(t, carts.Create(ctx, c))
	for _, l := range lines {
		line, _, err := c.PlanAdd(l.productID, l.branchID, l.quantity, l.price)
		require.NoError(t, err)
		require.NoError(t, carts.CreateLine(ctx, &line))
	}
	return u, c
}

func newCheckoutUseCase(db *gorm.DB, payments payment.Repository) *apporder.CheckoutUseCase {
	return apporder.NewCheckoutUseCase(
		NewCartRepository(db),
		NewOrderRepository(db),
		payments,
		NewUserRepository(db),
		NewAuditRepository(db),
		NewTxManager(db),
		shared.NoopPublisher{},
	)
}

func newConfirmUseCase(db *gorm.DB) *apppayment.ConfirmPaymentUseCase {
	inventoryRepo := NewInventoryRepository(db)
	publisher := shared.NoopPublisher{}
	return apppayment.NewConfirmPaymentUseCase(
		NewOrderRepository(db),
		NewCartRepository(db),
		NewPaymentRepository(db),
		NewAuditRepository(db),
		inventory.NewService(inventoryRepo),
		NewTxManager(db),
		shared.NoopCache{},
		invapp.NewLowStockChecker(NewProductRepository(db), inventoryRepo, publisher),
		publisher,
	)
}

func countRows(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}

func TestCheckout_AtomicOnStorageFailure(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u, c := newCheckedInCart(t, db, workflowLine{productID: 42, branchID: 1, quantity: 3, price: 1000})

	uc := newCheckoutUseCase(db, failingPaymentRepo{Repository: NewPaymentRepository(db)})
	_, err := uc.Execute(ctx, apporder.CheckoutRequest{
		CartID:  c.ID,
		Address: "Main St 1",
		Actor:   shared.Actor{UserID: u.ID, Role: user.RoleCliente},
	})
	require.Error(t, err)

	// 订单已插入但事务回滚,订单和支付都不可见
	assert.Equal(t, int64(0), countRows(t, db, "orders"))
	assert.Equal(t, int64(0), countRows(t, db, "payments"))
	assert.Equal(t, int64(0), countRows(t, db, "audit_log"))

	loaded, err := NewCartRepository(db).FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.StatusOpen, loaded.Status)

	// 故障恢复后同一个购物车可以正常结账
	out, err := newCheckoutUseCase(db, NewPaymentRepository(db)).Execute(ctx, apporder.CheckoutRequest{
		CartID:  c.ID,
		Address: "Main St 1",
		Actor:   shared.Actor{UserID: u.ID, Role: user.RoleCliente},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3000), out.Total)
	assert.Equal(t, int64(1), countRows(t, db, "orders"))
	assert.Equal(t, int64(1), countRows(t, db, "payments"))
}

func TestConfirmPayment_ConcurrentCallbacksDecrementOnce(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	inventoryRepo := NewInventoryRepository(db)

	for _, seed := range []struct {
		productID uint
		stock     int
	}{{1, 10}, {2, 5}, {3, 4}} {
		_, err := inventoryRepo.Increase(ctx, seed.productID, 1, seed.stock)
		require.NoError(t, err)
	}

	// 明细 (p1,2) (p2,1),商品3不在购物车中
	u, c := newCheckedInCart(t, db,
		workflowLine{productID: 1, branchID: 1, quantity: 2, price: 10},
		workflowLine{productID: 2, branchID: 1, quantity: 1, price: 5},
	)
	checkout, err := newCheckoutUseCase(db, NewPaymentRepository(db)).Execute(ctx, apporder.CheckoutRequest{
		CartID:  c.ID,
		Address: "Main St 1",
		Actor:   shared.Actor{UserID: u.ID, Role: user.RoleCliente},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(25), checkout.Total)

	// 同一订单的重复回调并发到达
	const callbacks = 8
	confirm := newConfirmUseCase(db)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		applied   int
		duplicate int
	)
	for i := 0; i < callbacks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := confirm.Execute(ctx, apppayment.ConfirmRequest{
				OrderID:     checkout.OrderID,
				ExternalRef: "AUTH123",
				Actor:       shared.SystemActor,
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				t.Errorf("confirm failed: %v", err)
				return
			}
			assert.Equal(t, "APPROVED", out.PaymentStatus)
			if out.AlreadyProcessed {
				duplicate++
			} else {
				applied++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, applied)
	assert.Equal(t, callbacks-1, duplicate)

	// 每行只扣一次,无关商品不变
	for _, want := range []struct {
		productID uint
		stock     int
	}{{1, 8}, {2, 4}, {3, 4}} {
		record, err := inventoryRepo.FindRecord(ctx, want.productID, 1)
		require.NoError(t, err)
		assert.Equal(t, want.stock, record.Stock, "product %d", want.productID)
	}

	movements, total, err := inventoryRepo.ListMovements(ctx, inventory.MovementFilter{OrderID: checkout.OrderID, Page: 1, PageSize: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, m := range movements {
		assert.Equal(t, inventory.MovementSale, m.Type)
	}

	p, err := NewPaymentRepository(db).FindByOrderID(ctx, checkout.OrderID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusApproved, p.Status)
	assert.Equal(t, "AUTH123", p.ExternalRef)
}
