package payment

import (
	"context"
	"time"
)

// 网关交易状态(WebPay Plus commit响应的status字段)
const (
	GatewayStatusAuthorized = "AUTHORIZED"
	GatewayStatusFailed     = "FAILED"
)

// Gateway 支付网关端口,由infrastructure/transbank实现
type Gateway interface {
	// CreateTransaction 创建交易,返回用户跳转支付用的Token和URL
	CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*Transaction, error)

	// CommitTransaction 用户支付返回后确认交易结果
	CommitTransaction(ctx context.Context, token string) (*CommitResult, error)

	// Info 网关配置(统计接口展示)
	Info() GatewayInfo
}

// CreateTransactionRequest 建单请求
type CreateTransactionRequest struct {
	BuyOrder  string // 订单号
	SessionID string
	Amount    int64
	ReturnURL string
}

// Transaction 建单结果
type Transaction struct {
	Token string
	URL   string
}

// CommitResult 确认结果
type CommitResult struct {
	Status            string
	AuthorizationCode string
	Amount            int64
	BuyOrder          string
	ResponseCode      int
	CardLast4         string
	TransactionDate   time.Time
}

// IsAuthorized 网关是否授权
func (r *CommitResult) IsAuthorized() bool {
	return r.Status == GatewayStatusAuthorized && r.ResponseCode == 0
}

// GatewayInfo 网关配置信息
type GatewayInfo struct {
	Environment string  `json:"environment"`
	Simulation  bool    `json:"simulation"`
	SuccessRate float64 `json:"success_rate"`
	PendingRate float64 `json:"pending_rate"`
	FailureRate float64 `json:"failure_rate"`
}
