package payment

import (
	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/inventory"
	"github.com/xiebiao/autoparts/internal/domain/order"
	"github.com/xiebiao/autoparts/internal/domain/payment"
)

// =========================================
// 请求DTO
// =========================================

// ConfirmRequest 确认支付
type ConfirmRequest struct {
	OrderID     uint
	ExternalRef string
	Actor       shared.Actor
}

// FailRequest 支付失败
type FailRequest struct {
	OrderID uint
	Reason  string
	Actor   shared.Actor
}

// CreateTransactionRequest 发起网关交易
type CreateTransactionRequest struct {
	OrderID   uint
	ReturnURL string
	Actor     shared.Actor
}

// GatewayConfirmRequest 网关回调确认,OrderID可选(用于校验Token归属)
type GatewayConfirmRequest struct {
	OrderID uint
	Token   string
}

// SimulateRequest 模拟支付(开发环境)
type SimulateRequest struct {
	OrderID  uint
	Scenario string // random / success / pending / failure
	Actor    shared.Actor
}

// =========================================
// 响应DTO
// =========================================

// Outcome 支付处理结果
type Outcome struct {
	OrderID             uint             `json:"order_id"`
	OrderNo             string           `json:"order_no"`
	OrderStatus         string           `json:"order_status"`
	PaymentStatus       string           `json:"payment_status"`
	ExternalRef         string           `json:"external_ref,omitempty"`
	AlreadyProcessed    bool             `json:"already_processed"`
	NeedsReconciliation bool             `json:"needs_reconciliation"`
	Products            []ProductOutcome `json:"products,omitempty"`
}

// ProductOutcome 单个商品的扣减结果
type ProductOutcome struct {
	ProductID  uint `json:"product_id"`
	BranchID   uint `json:"branch_id"`
	Quantity   int  `json:"quantity"`
	StockAfter int  `json:"stock_after"`
}

// TransactionResponse 网关交易
type TransactionResponse struct {
	OrderID   uint   `json:"order_id"`
	PaymentID uint   `json:"payment_id"`
	Status    string `json:"status"`
	Token     string `json:"token"`
	URL       string `json:"url"`
}

// SimulateResponse 模拟结果
type SimulateResponse struct {
	Scenario string   `json:"scenario"`
	Outcome  *Outcome `json:"outcome"`
}

func newOutcome(o *order.Order, p *payment.Payment, movements []*inventory.Movement) *Outcome {
	out := &Outcome{
		OrderID:             o.ID,
		OrderNo:             o.OrderNo,
		OrderStatus:         string(o.Status),
		PaymentStatus:       string(p.Status),
		ExternalRef:         p.ExternalRef,
		NeedsReconciliation: p.NeedsReconciliation,
	}
	for _, m := range movements {
		qty := m.Quantity
		if qty < 0 {
			qty = -qty
		}
		out.Products = append(out.Products, ProductOutcome{
			ProductID:  m.ProductID,
			BranchID:   m.BranchID,
			Quantity:   qty,
			StockAfter: m.StockAfter,
		})
	}
	return out
}
