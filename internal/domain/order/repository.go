package order

import (
	"context"
)

// Repository 订单仓储接口
// 支持事务操作(通过context传递事务)
type Repository interface {
	// Create 创建订单,CartID重复返回ErrCartAlreadyOrdered
	Create(ctx context.Context, order *Order) error

	// FindByID 不存在返回ErrOrderNotFound
	FindByID(ctx context.Context, id uint) (*Order, error)

	// FindByIDForUpdate 加排他锁查询,必须在事务内调用
	FindByIDForUpdate(ctx context.Context, id uint) (*Order, error)

	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// UpdateStatus 更新状态
	UpdateStatus(ctx context.Context, order *Order) error

	// List 分页查询,UserID为0表示所有用户(管理员)
	List(ctx context.Context, filter ListFilter) ([]*Order, int64, error)
}

// ListFilter 订单查询条件
type ListFilter struct {
	UserID   uint
	Status   Status
	Page     int
	PageSize int
}
