package order

import (
	"time"

	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/cart"
	"github.com/xiebiao/autoparts/internal/domain/order"
	"github.com/xiebiao/autoparts/internal/domain/payment"
)

// =========================================
// 请求DTO
// =========================================

// CheckoutRequest 结账请求
type CheckoutRequest struct {
	CartID        uint
	UserID        uint // 管理员代客下单时指定,普通用户忽略(取JWT中的用户)
	Address       string
	PaymentMethod string
	Actor         shared.Actor
}

// CancelOrderRequest 取消订单请求
type CancelOrderRequest struct {
	OrderID uint
	Reason  string
	Actor   shared.Actor
}

// ListOrdersRequest 订单列表请求
type ListOrdersRequest struct {
	UserID   uint   // 仅员工可查他人,0表示全部
	Status   string // 可选
	Page     int
	PageSize int
	Actor    shared.Actor
}

// =========================================
// 响应DTO
// =========================================

// CheckoutResponse 结账响应
type CheckoutResponse struct {
	OrderID       uint      `json:"order_id"`
	OrderNo       string    `json:"order_no"`
	PaymentID     uint      `json:"payment_id"`
	PaymentNo     string    `json:"payment_no"`
	Total         int64     `json:"total"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	PaymentMethod string    `json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`
}

// OrderDTO 订单
type OrderDTO struct {
	ID            uint      `json:"id"`
	OrderNo       string    `json:"order_no"`
	CartID        uint      `json:"cart_id"`
	UserID        uint      `json:"user_id"`
	Address       string    `json:"address"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method"`
	Total         int64     `json:"total"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OrderDetailDTO 订单详情(含明细和支付)
type OrderDetailDTO struct {
	OrderDTO
	Lines   []LineDTO   `json:"lines"`
	Payment *PaymentDTO `json:"payment,omitempty"`
}

// LineDTO 订单明细(结算时的购物车明细)
type LineDTO struct {
	ProductID uint  `json:"product_id"`
	BranchID  uint  `json:"branch_id"`
	Quantity  int   `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
	LineTotal int64 `json:"line_total"`
}

// PaymentDTO 支付摘要
type PaymentDTO struct {
	ID                  uint       `json:"id"`
	PaymentNo           string     `json:"payment_no"`
	Method              string     `json:"method"`
	Status              string     `json:"status"`
	Amount              int64      `json:"amount"`
	ExternalRef         string     `json:"external_ref,omitempty"`
	PaymentURL          string     `json:"payment_url,omitempty"`
	NeedsReconciliation bool       `json:"needs_reconciliation"`
	ProcessedAt         *time.Time `json:"processed_at,omitempty"`
}

// ListOrdersResponse 订单分页
type ListOrdersResponse struct {
	Items    []OrderDTO `json:"items"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

func toOrderDTO(o *order.Order) OrderDTO {
	return OrderDTO{
		ID:            o.ID,
		OrderNo:       o.OrderNo,
		CartID:        o.CartID,
		UserID:        o.UserID,
		Address:       o.Address,
		Status:        string(o.Status),
		PaymentMethod: o.PaymentMethod,
		Total:         o.Total,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func toLineDTOs(lines []cart.Line) []LineDTO {
	out := make([]LineDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, LineDTO{
			ProductID: l.ProductID,
			BranchID:  l.BranchID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		})
	}
	return out
}

func toPaymentDTO(p *payment.Payment) *PaymentDTO {
	if p == nil {
		return nil
	}
	return &PaymentDTO{
		ID:                  p.ID,
		PaymentNo:           p.PaymentNo,
		Method:              string(p.Method),
		Status:              string(p.Status),
		Amount:              p.Amount,
		ExternalRef:         p.ExternalRef,
		PaymentURL:          p.PaymentURL,
		NeedsReconciliation: p.NeedsReconciliation,
		ProcessedAt:         p.ProcessedAt,
	}
}
