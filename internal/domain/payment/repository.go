package payment

import (
	"context"
)

// Repository 支付仓储接口
type Repository interface {
	// Create OrderID重复返回ErrDuplicatePayment
	Create(ctx context.Context, payment *Payment) error

	FindByID(ctx context.Context, id uint) (*Payment, error)

	// FindByOrderID 不存在返回ErrPaymentNotFound
	FindByOrderID(ctx context.Context, orderID uint) (*Payment, error)

	// FindByOrderIDForUpdate 加排他锁查询
	// 确认/失败回调的幂等检查和状态更新都在这把锁下完成
	FindByOrderIDForUpdate(ctx context.Context, orderID uint) (*Payment, error)

	// FindByToken 按网关Token查询
	FindByToken(ctx context.Context, token string) (*Payment, error)

	// Update 更新状态、Token、外部流水号、对账标记等字段
	Update(ctx context.Context, payment *Payment) error
}
