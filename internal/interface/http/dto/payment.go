package dto

// ConfirmPaymentRequest 确认支付
// 带token时向网关确认;否则按external_ref人工确认(仅管理员)
type ConfirmPaymentRequest struct {
	OrderID     uint   `json:"order_id" binding:"required"`
	Token       string `json:"token" binding:"max=128"`
	ExternalRef string `json:"external_ref" binding:"max=100"`
}

// FailPaymentRequest 支付失败
type FailPaymentRequest struct {
	OrderID uint   `json:"order_id" binding:"required"`
	Reason  string `json:"reason" binding:"max=255"`
}

// CreateTransactionRequest 发起WebPay交易
type CreateTransactionRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// SimulatePaymentRequest 模拟支付
type SimulatePaymentRequest struct {
	OrderID  uint   `json:"order_id" binding:"required"`
	Scenario string `json:"scenario" binding:"omitempty,oneof=random success pending failure RANDOM SUCCESS PENDING FAILURE"`
}

// WebpayReturn WebPay回跳参数
// 正常支付带token_ws;用户在支付页取消时只带TBK_TOKEN
type WebpayReturn struct {
	OrderID  uint   `form:"order_id" binding:"required"`
	TokenWS  string `form:"token_ws"`
	TBKToken string `form:"TBK_TOKEN"`
}
