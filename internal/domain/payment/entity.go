package payment

import (
	"strings"
	"time"
)

// Status 支付状态
type Status string

const (
	StatusPending    Status = "PENDING"    // 已创建,未发起网关交易
	StatusProcessing Status = "PROCESSING" // 网关交易已创建,等待用户支付
	StatusApproved   Status = "APPROVED"   // 支付成功(终态)
	StatusFailed     Status = "FAILED"     // 支付失败(终态)
)

// IsTerminal APPROVED/FAILED为终态,重复回调在终态上是空操作
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusFailed
}

// Method 支付方式
type Method string

const (
	MethodWebpay        Method = "WEBPAY"
	MethodMercadoPago   Method = "MERCADOPAGO"
	MethodTransferencia Method = "TRANSFERENCIA"
)

// ParseMethod 校验支付方式,空串默认WEBPAY
func ParseMethod(s string) (Method, error) {
	if s == "" {
		return MethodWebpay, nil
	}
	switch m := Method(strings.ToUpper(s)); m {
	case MethodWebpay, MethodMercadoPago, MethodTransferencia:
		return m, nil
	}
	return "", ErrInvalidMethod
}

// Payment 支付记录
// 设计说明:
// 1. 每个订单一条支付记录(OrderID唯一索引)
// 2. Token/PaymentURL是网关建单后返回的,用户凭此跳转支付
// 3. ExternalRef是网关授权码(或模拟支付的SIM-xxx)
// 4. NeedsReconciliation:网关已扣款但库存不足,需要人工处理(退款或补货)
type Payment struct {
	ID                  uint
	PaymentNo           string
	OrderID             uint
	Amount              int64 // CLP
	Method              Method
	Status              Status
	Token               string
	PaymentURL          string
	ExternalRef         string
	FailureReason       string
	NeedsReconciliation bool
	ProcessedAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewPayment 创建待支付记录
func NewPayment(orderID uint, amount int64, method Method) *Payment {
	now := time.Now()
	return &Payment{
		PaymentNo: GeneratePaymentNo(),
		OrderID:   orderID,
		Amount:    amount,
		Method:    method,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StartProcessing PENDING → PROCESSING(发起网关交易前预占)
func (p *Payment) StartProcessing() error {
	if p.Status != StatusPending {
		return ErrInvalidStatusTransition
	}
	p.Status = StatusProcessing
	p.UpdatedAt = time.Now()
	return nil
}

// RevertToPending PROCESSING → PENDING(网关建单失败的补偿)
func (p *Payment) RevertToPending() error {
	if p.Status != StatusProcessing {
		return ErrInvalidStatusTransition
	}
	p.Status = StatusPending
	p.Token = ""
	p.PaymentURL = ""
	p.UpdatedAt = time.Now()
	return nil
}

// ResumeProcessing 接管没有Token的PROCESSING支付(上次发起在网关建单前中断)
// 距上次更新不足staleAfter的视为仍在发起中
func (p *Payment) ResumeProcessing(now time.Time, staleAfter time.Duration) error {
	if p.Status != StatusProcessing || p.HasTransaction() {
		return ErrInvalidStatusTransition
	}
	if now.Sub(p.UpdatedAt) < staleAfter {
		return ErrTransactionInProgress
	}
	p.UpdatedAt = now
	return nil
}

// AttachTransaction 记录网关交易
func (p *Payment) AttachTransaction(token, url string) {
	p.Token = token
	p.PaymentURL = url
	p.UpdatedAt = time.Now()
}

// HasTransaction 网关交易是否已创建
func (p *Payment) HasTransaction() bool {
	return p.Token != ""
}

// Approve PENDING/PROCESSING → APPROVED
func (p *Payment) Approve(externalRef string, at time.Time) error {
	if p.Status.IsTerminal() {
		return ErrInvalidStatusTransition
	}
	p.Status = StatusApproved
	p.ExternalRef = externalRef
	// 补货后重试确认成功,对账标记随之解除
	p.NeedsReconciliation = false
	p.FailureReason = ""
	p.ProcessedAt = &at
	p.UpdatedAt = at
	return nil
}

// Fail PENDING/PROCESSING → FAILED
func (p *Payment) Fail(reason string, at time.Time) error {
	if p.Status.IsTerminal() {
		return ErrInvalidStatusTransition
	}
	p.Status = StatusFailed
	p.FailureReason = reason
	p.ProcessedAt = &at
	p.UpdatedAt = at
	return nil
}

// FlagReconciliation 标记人工对账,状态保持不变
func (p *Payment) FlagReconciliation(externalRef, reason string) {
	p.NeedsReconciliation = true
	if externalRef != "" {
		p.ExternalRef = externalRef
	}
	p.FailureReason = reason
	p.UpdatedAt = time.Now()
}
