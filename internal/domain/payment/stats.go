package payment

import (
	"context"
)

// StatusCount 按状态汇总
type StatusCount struct {
	Status string
	Count  int64
	Amount int64
}

// ProductSales 商品销量(来自SALE流水)
type ProductSales struct {
	ProductID uint
	Name      string
	Quantity  int64
}

// StatsRepository 支付统计(只读)
type StatsRepository interface {
	PaymentsByStatus(ctx context.Context) ([]StatusCount, error)
	OrdersByStatus(ctx context.Context) ([]StatusCount, error)
	// TopProducts 按已售数量倒序
	TopProducts(ctx context.Context, limit int) ([]ProductSales, error)
}
