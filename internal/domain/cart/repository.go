package cart

import (
	"context"
)

// Repository 购物车仓储接口
type Repository interface {
	// Create 创建购物车(ID由数据库自增生成)
	Create(ctx context.Context, cart *Cart) error

	// FindByID 查询购物车及明细,不存在返回ErrCartNotFound
	FindByID(ctx context.Context, id uint) (*Cart, error)

	// FindByIDForUpdate 同FindByID,并对购物车行加排他锁(SELECT ... FOR UPDATE)
	// 必须在事务内调用;加购、改数量、结算都先拿这把锁,互相串行
	FindByIDForUpdate(ctx context.Context, id uint) (*Cart, error)

	// UpdateStatus 更新状态(结算)
	UpdateStatus(ctx context.Context, cart *Cart) error

	// CreateLine 新增明细,(cart_id, product_id)唯一
	CreateLine(ctx context.Context, line *Line) error

	// UpdateLine 更新明细数量和小计
	UpdateLine(ctx context.Context, line *Line) error

	// DeleteLine 删除明细,不存在返回ErrLineNotFound
	DeleteLine(ctx context.Context, cartID, productID uint) error
}
