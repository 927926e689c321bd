package shared

import (
	"time"
)

// 事件路由键(Topic Exchange)
const (
	EventOrderCheckedOut       = "order.checked_out"
	EventOrderCancelled        = "order.cancelled"
	EventPaymentApproved       = "payment.approved"
	EventPaymentFailed         = "payment.failed"
	EventPaymentReconciliation = "payment.reconciliation"
	EventStockLow              = "stock.low"
)

// OrderCheckedOut 结账完成
type OrderCheckedOut struct {
	OrderID    uint      `json:"order_id"`
	OrderNo    string    `json:"order_no"`
	CartID     uint      `json:"cart_id"`
	UserID     uint      `json:"user_id"`
	Total      int64     `json:"total"`
	OccurredAt time.Time `json:"occurred_at"`
}

// OrderCancelled 订单取消
type OrderCancelled struct {
	OrderID    uint      `json:"order_id"`
	Restocked  bool      `json:"restocked"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentApproved 支付成功,库存已扣减
type PaymentApproved struct {
	OrderID     uint      `json:"order_id"`
	PaymentID   uint      `json:"payment_id"`
	Amount      int64     `json:"amount"`
	ExternalRef string    `json:"external_ref"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// PaymentFailed 支付失败
type PaymentFailed struct {
	OrderID    uint      `json:"order_id"`
	PaymentID  uint      `json:"payment_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentReconciliation 已收款但库存不足,需要人工对账
type PaymentReconciliation struct {
	OrderID     uint      `json:"order_id"`
	PaymentID   uint      `json:"payment_id"`
	ExternalRef string    `json:"external_ref"`
	ProductID   uint      `json:"product_id"`
	BranchID    uint      `json:"branch_id"`
	Requested   int       `json:"requested"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// StockLow 商品总库存跌破安全库存
type StockLow struct {
	ProductID  uint      `json:"product_id"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	TotalStock int       `json:"total_stock"`
	StockMin   int       `json:"stock_min"`
	OccurredAt time.Time `json:"occurred_at"`
}
