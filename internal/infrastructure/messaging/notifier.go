package messaging

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/xiebiao/autoparts/internal/application/shared"
)

// NotifierRoutingKeys notifier订阅的路由键
var NotifierRoutingKeys = []string{"stock.#", "payment.#"}

// Notifier 把库存和支付事件转成告警日志
// 格式错误的消息直接丢弃(返回nil),避免反复重新入队
type Notifier struct {
	log *zap.Logger
}

// NewNotifier 创建通知处理器
func NewNotifier(log *zap.Logger) *Notifier {
	return &Notifier{log: log}
}

// Handle 实现mq.Handler
func (n *Notifier) Handle(_ context.Context, routingKey string, body []byte) error {
	switch routingKey {
	case shared.EventStockLow:
		var evt shared.StockLow
		if !n.decode(routingKey, body, &evt) {
			return nil
		}
		n.log.Warn("low stock alert",
			zap.Uint("product_id", evt.ProductID),
			zap.String("sku", evt.SKU),
			zap.String("name", evt.Name),
			zap.Int("total_stock", evt.TotalStock),
			zap.Int("stock_min", evt.StockMin),
		)

	case shared.EventPaymentReconciliation:
		var evt shared.PaymentReconciliation
		if !n.decode(routingKey, body, &evt) {
			return nil
		}
		n.log.Error("payment needs manual reconciliation",
			zap.Bool("reconciliation", true),
			zap.Uint("order_id", evt.OrderID),
			zap.Uint("payment_id", evt.PaymentID),
			zap.String("external_ref", evt.ExternalRef),
			zap.Uint("product_id", evt.ProductID),
			zap.Uint("branch_id", evt.BranchID),
			zap.Int("requested", evt.Requested),
		)

	case shared.EventPaymentApproved:
		var evt shared.PaymentApproved
		if !n.decode(routingKey, body, &evt) {
			return nil
		}
		n.log.Info("payment approved",
			zap.Uint("order_id", evt.OrderID),
			zap.Int64("amount", evt.Amount),
			zap.String("external_ref", evt.ExternalRef),
		)

	case shared.EventPaymentFailed:
		var evt shared.PaymentFailed
		if !n.decode(routingKey, body, &evt) {
			return nil
		}
		n.log.Info("payment failed",
			zap.Uint("order_id", evt.OrderID),
			zap.String("reason", evt.Reason),
		)

	default:
		n.log.Debug("event ignored", zap.String("routing_key", routingKey))
	}
	return nil
}

func (n *Notifier) decode(routingKey string, body []byte, v interface{}) bool {
	if err := json.Unmarshal(body, v); err != nil {
		n.log.Error("drop malformed event",
			zap.String("routing_key", routingKey),
			zap.ByteString("body", body),
			zap.Error(err),
		)
		return false
	}
	return true
}
