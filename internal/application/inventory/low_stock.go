// Package inventory 库存出入库、低库存告警和库存查询用例
package inventory

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/catalog"
	"github.com/xiebiao/autoparts/internal/domain/inventory"
	"github.com/xiebiao/autoparts/pkg/logger"
	"github.com/xiebiao/autoparts/pkg/metrics"
)

// LowStockAlert 低库存告警
type LowStockAlert struct {
	ProductID  uint   `json:"product_id"`
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	TotalStock int    `json:"total_stock"`
	StockMin   int    `json:"stock_min"`
}

// LowStockChecker 库存变化后检查总库存是否跌破安全库存
// 在事务提交后调用,检查失败只记录日志
type LowStockChecker struct {
	productRepo   catalog.ProductRepository
	inventoryRepo inventory.Repository
	publisher     shared.EventPublisher
}

// NewLowStockChecker 创建检查器
func NewLowStockChecker(productRepo catalog.ProductRepository, inventoryRepo inventory.Repository, publisher shared.EventPublisher) *LowStockChecker {
	return &LowStockChecker{productRepo: productRepo, inventoryRepo: inventoryRepo, publisher: publisher}
}

// Check 返回跌破安全库存的商品,并发布stock.low事件
func (c *LowStockChecker) Check(ctx context.Context, productIDs ...uint) []LowStockAlert {
	if len(productIDs) == 0 {
		return nil
	}
	log := logger.FromContext(ctx)

	products, err := c.productRepo.FindByIDs(ctx, productIDs)
	if err != nil {
		log.Warn("low stock check skipped", zap.Error(err))
		return nil
	}
	totals, err := c.inventoryRepo.TotalStocks(ctx, productIDs)
	if err != nil {
		log.Warn("low stock check skipped", zap.Error(err))
		return nil
	}

	var alerts []LowStockAlert
	for _, p := range products {
		total := totals[p.ID]
		if !p.IsLowStock(total) {
			continue
		}
		alert := LowStockAlert{
			ProductID:  p.ID,
			SKU:        p.SKU,
			Name:       p.Name,
			TotalStock: total,
			StockMin:   p.StockMin,
		}
		alerts = append(alerts, alert)

		metrics.IncCounter(metrics.LowStockAlertsTotal)
		log.Warn("low stock",
			zap.Uint("product_id", p.ID),
			zap.String("sku", p.SKU),
			zap.Int("total_stock", total),
			zap.Int("stock_min", p.StockMin),
		)
		shared.PublishQuietly(ctx, c.publisher, shared.EventStockLow, shared.StockLow{
			ProductID:  p.ID,
			SKU:        p.SKU,
			Name:       p.Name,
			TotalStock: total,
			StockMin:   p.StockMin,
			OccurredAt: time.Now(),
		})
	}
	return alerts
}
