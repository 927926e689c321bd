package dto

// CheckoutRequest 结账
// user_id仅管理员代客下单时使用
type CheckoutRequest struct {
	CartID        uint   `json:"cart_id" binding:"required"`
	UserID        uint   `json:"user_id"`
	Address       string `json:"address" binding:"required,max=255"`
	PaymentMethod string `json:"payment_method" binding:"omitempty,oneof=WEBPAY MERCADOPAGO TRANSFERENCIA webpay mercadopago transferencia"`
}

// ListOrdersQuery 订单列表查询参数
type ListOrdersQuery struct {
	UserID   uint   `form:"user_id"`
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// CancelOrderRequest 取消订单
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=255"`
}
