// Package mocks 基于testify/mock的仓储和端口测试替身
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xiebiao/autoparts/internal/domain/audit"
	"github.com/xiebiao/autoparts/internal/domain/cart"
	"github.com/xiebiao/autoparts/internal/domain/catalog"
	"github.com/xiebiao/autoparts/internal/domain/inventory"
	"github.com/xiebiao/autoparts/internal/domain/order"
	"github.com/xiebiao/autoparts/internal/domain/payment"
	"github.com/xiebiao/autoparts/internal/domain/user"
)

// =========================================
// catalog
// =========================================

type ProductRepository struct{ mock.Mock }

func (m *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil && p.ID == 0 {
		p.ID = 1
	}
	return args.Error(0)
}

func (m *ProductRepository) FindByID(ctx context.Context, id uint) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*catalog.Product)
	return p, args.Error(1)
}

func (m *ProductRepository) FindByIDs(ctx context.Context, ids []uint) ([]*catalog.Product, error) {
	args := m.Called(ctx, ids)
	p, _ := args.Get(0).([]*catalog.Product)
	return p, args.Error(1)
}

func (m *ProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ProductRepository) List(ctx context.Context, f catalog.ListFilter) ([]*catalog.Product, int64, error) {
	args := m.Called(ctx, f)
	p, _ := args.Get(0).([]*catalog.Product)
	return p, args.Get(1).(int64), args.Error(2)
}

type BranchRepository struct{ mock.Mock }

func (m *BranchRepository) Create(ctx context.Context, b *catalog.Branch) error {
	args := m.Called(ctx, b)
	if args.Error(0) == nil && b.ID == 0 {
		b.ID = 1
	}
	return args.Error(0)
}

func (m *BranchRepository) FindByID(ctx context.Context, id uint) (*catalog.Branch, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*catalog.Branch)
	return b, args.Error(1)
}

func (m *BranchRepository) List(ctx context.Context) ([]*catalog.Branch, error) {
	args := m.Called(ctx)
	b, _ := args.Get(0).([]*catalog.Branch)
	return b, args.Error(1)
}

type CategoryRepository struct{ mock.Mock }

func (m *CategoryRepository) Create(ctx context.Context, c *catalog.Category) error {
	args := m.Called(ctx, c)
	if args.Error(0) == nil && c.ID == 0 {
		c.ID = 1
	}
	return args.Error(0)
}

func (m *CategoryRepository) FindByID(ctx context.Context, id uint) (*catalog.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*catalog.Category)
	return c, args.Error(1)
}

func (m *CategoryRepository) List(ctx context.Context) ([]*catalog.Category, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).([]*catalog.Category)
	return c, args.Error(1)
}

// =========================================
// inventory
// =========================================

type InventoryRepository struct{ mock.Mock }

func (m *InventoryRepository) Increase(ctx context.Context, productID, branchID uint, delta int) (int, error) {
	args := m.Called(ctx, productID, branchID, delta)
	return args.Int(0), args.Error(1)
}

func (m *InventoryRepository) Decrease(ctx context.Context, productID, branchID uint, delta int) (int, error) {
	args := m.Called(ctx, productID, branchID, delta)
	return args.Int(0), args.Error(1)
}

func (m *InventoryRepository) FindRecord(ctx context.Context, productID, branchID uint) (*inventory.Record, error) {
	args := m.Called(ctx, productID, branchID)
	r, _ := args.Get(0).(*inventory.Record)
	return r, args.Error(1)
}

func (m *InventoryRepository) ListRecords(ctx context.Context, f inventory.RecordFilter) ([]*inventory.Record, error) {
	args := m.Called(ctx, f)
	r, _ := args.Get(0).([]*inventory.Record)
	return r, args.Error(1)
}

func (m *InventoryRepository) TotalStocks(ctx context.Context, productIDs []uint) (map[uint]int, error) {
	args := m.Called(ctx, productIDs)
	r, _ := args.Get(0).(map[uint]int)
	return r, args.Error(1)
}

func (m *InventoryRepository) AppendMovement(ctx context.Context, mv *inventory.Movement) error {
	return m.Called(ctx, mv).Error(0)
}

func (m *InventoryRepository) ListMovements(ctx context.Context, f inventory.MovementFilter) ([]*inventory.Movement, int64, error) {
	args := m.Called(ctx, f)
	r, _ := args.Get(0).([]*inventory.Movement)
	return r, args.Get(1).(int64), args.Error(2)
}

// =========================================
// cart
// =========================================

type CartRepository struct{ mock.Mock }

func (m *CartRepository) Create(ctx context.Context, c *cart.Cart) error {
	args := m.Called(ctx, c)
	if args.Error(0) == nil && c.ID == 0 {
		c.ID = 1
	}
	return args.Error(0)
}

func (m *CartRepository) FindByID(ctx context.Context, id uint) (*cart.Cart, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*cart.Cart)
	return c, args.Error(1)
}

func (m *CartRepository) FindByIDForUpdate(ctx context.Context, id uint) (*cart.Cart, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*cart.Cart)
	return c, args.Error(1)
}

func (m *CartRepository) UpdateStatus(ctx context.Context, c *cart.Cart) error {
	return m.Called(ctx, c).Error(0)
}

func (m *CartRepository) CreateLine(ctx context.Context, l *cart.Line) error {
	return m.Called(ctx, l).Error(0)
}

func (m *CartRepository) UpdateLine(ctx context.Context, l *cart.Line) error {
	return m.Called(ctx, l).Error(0)
}

func (m *CartRepository) DeleteLine(ctx context.Context, cartID, productID uint) error {
	return m.Called(ctx, cartID, productID).Error(0)
}

// =========================================
// order
// =========================================

type OrderRepository struct{ mock.Mock }

func (m *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	if args.Error(0) == nil && o.ID == 0 {
		o.ID = 1
	}
	return args.Error(0)
}

func (m *OrderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *OrderRepository) FindByIDForUpdate(ctx context.Context, id uint) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *OrderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	args := m.Called(ctx, orderNo)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *OrderRepository) UpdateStatus(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *OrderRepository) List(ctx context.Context, f order.ListFilter) ([]*order.Order, int64, error) {
	args := m.Called(ctx, f)
	o, _ := args.Get(0).([]*order.Order)
	return o, args.Get(1).(int64), args.Error(2)
}

// =========================================
// payment
// =========================================

type PaymentRepository struct{ mock.Mock }

func (m *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil && p.ID == 0 {
		p.ID = 1
	}
	return args.Error(0)
}

func (m *PaymentRepository) FindByID(ctx context.Context, id uint) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*payment.Payment)
	return p, args.Error(1)
}

func (m *PaymentRepository) FindByOrderID(ctx context.Context, orderID uint) (*payment.Payment, error) {
	args := m.Called(ctx, orderID)
	p, _ := args.Get(0).(*payment.Payment)
	return p, args.Error(1)
}

func (m *PaymentRepository) FindByOrderIDForUpdate(ctx context.Context, orderID uint) (*payment.Payment, error) {
	args := m.Called(ctx, orderID)
	p, _ := args.Get(0).(*payment.Payment)
	return p, args.Error(1)
}

func (m *PaymentRepository) FindByToken(ctx context.Context, token string) (*payment.Payment, error) {
	args := m.Called(ctx, token)
	p, _ := args.Get(0).(*payment.Payment)
	return p, args.Error(1)
}

func (m *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	return m.Called(ctx, p).Error(0)
}

type Gateway struct{ mock.Mock }

func (m *Gateway) CreateTransaction(ctx context.Context, req payment.CreateTransactionRequest) (*payment.Transaction, error) {
	args := m.Called(ctx, req)
	t, _ := args.Get(0).(*payment.Transaction)
	return t, args.Error(1)
}

func (m *Gateway) CommitTransaction(ctx context.Context, token string) (*payment.CommitResult, error) {
	args := m.Called(ctx, token)
	r, _ := args.Get(0).(*payment.CommitResult)
	return r, args.Error(1)
}

func (m *Gateway) Info() payment.GatewayInfo {
	return m.Called().Get(0).(payment.GatewayInfo)
}

// =========================================
// audit / user
// =========================================

type AuditRepository struct{ mock.Mock }

func (m *AuditRepository) Append(ctx context.Context, e *audit.Entry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *AuditRepository) List(ctx context.Context, userID uint, page, pageSize int) ([]*audit.Entry, int64, error) {
	args := m.Called(ctx, userID, page, pageSize)
	e, _ := args.Get(0).([]*audit.Entry)
	return e, args.Get(1).(int64), args.Error(2)
}

type UserRepository struct{ mock.Mock }

func (m *UserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil && u.ID == 0 {
		u.ID = 1
	}
	return args.Error(0)
}

func (m *UserRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

type StatsRepository struct{ mock.Mock }

func (m *StatsRepository) PaymentsByStatus(ctx context.Context) ([]payment.StatusCount, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).([]payment.StatusCount)
	return s, args.Error(1)
}

func (m *StatsRepository) OrdersByStatus(ctx context.Context) ([]payment.StatusCount, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).([]payment.StatusCount)
	return s, args.Error(1)
}

func (m *StatsRepository) TopProducts(ctx context.Context, limit int) ([]payment.ProductSales, error) {
	args := m.Called(ctx, limit)
	s, _ := args.Get(0).([]payment.ProductSales)
	return s, args.Error(1)
}
