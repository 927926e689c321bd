package catalog

import (
	"context"
)

// ProductRepository 商品仓储接口
type ProductRepository interface {
	// Create 创建商品,SKU重复返回ErrSKUDuplicate
	Create(ctx context.Context, product *Product) error

	// FindByID 不存在返回ErrProductNotFound
	FindByID(ctx context.Context, id uint) (*Product, error)

	// FindByIDs 批量查询,不存在的ID直接忽略
	FindByIDs(ctx context.Context, ids []uint) ([]*Product, error)

	Update(ctx context.Context, product *Product) error

	// List 分页查询,关键字匹配名称/品牌/SKU
	List(ctx context.Context, filter ListFilter) ([]*Product, int64, error)
}

// ListFilter 商品查询条件
type ListFilter struct {
	Keyword    string
	CategoryID uint
	Page       int
	PageSize   int
}

// BranchRepository 门店仓储接口
type BranchRepository interface {
	Create(ctx context.Context, branch *Branch) error
	FindByID(ctx context.Context, id uint) (*Branch, error)
	List(ctx context.Context) ([]*Branch, error)
}

// CategoryRepository 分类仓储接口
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	FindByID(ctx context.Context, id uint) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
}
