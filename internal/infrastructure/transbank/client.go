// Package transbank WebPay Plus REST客户端(v1.2),实现payment.Gateway
//
//	POST /rswebpaytransaction/api/webpay/v1.2/transactions          建单
//	PUT  /rswebpaytransaction/api/webpay/v1.2/transactions/{token}  确认
//
// simulation=true时不访问网络,Token和交易结果在进程内生成。
package transbank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/xiebiao/autoparts/internal/domain/payment"
	"github.com/xiebiao/autoparts/internal/infrastructure/config"
	"github.com/xiebiao/autoparts/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
	"github.com/xiebiao/autoparts/pkg/logger"
	"github.com/xiebiao/autoparts/pkg/metrics"
)

const transactionsPath = "/rswebpaytransaction/api/webpay/v1.2/transactions"

// Client WebPay Plus客户端
type Client struct {
	http    *resty.Client
	cfg     config.TransbankConfig
	breaker *circuitbreaker.CircuitBreaker
	sim     *simulator
}

var _ payment.Gateway = (*Client)(nil)

// NewClient 按配置创建客户端
func NewClient(cfg config.TransbankConfig, log *zap.Logger) *Client {
	c := newClient(cfg, cfg.BaseURL())
	log.Info("transbank gateway ready",
		zap.String("environment", cfg.Environment),
		zap.Bool("simulation", cfg.Simulation),
	)
	return c
}

func newClient(cfg config.TransbankConfig, baseURL string) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Tbk-Api-Key-Id", cfg.CommerceCode).
		SetHeader("Tbk-Api-Key-Secret", cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	c := &Client{
		http: httpClient,
		cfg:  cfg,
		breaker: circuitbreaker.NewCircuitBreaker("transbank", circuitbreaker.Config{
			Timeout:     cfg.BreakerTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool { return counts.ConsecutiveFailures >= failures },
			// 网关明确拒绝(4xx)是业务结果,不计为故障
			IsSuccessful: func(err error) bool {
				var apiErr *apiError
				if errors.As(err, &apiErr) {
					return apiErr.StatusCode < 500
				}
				return err == nil
			},
		}),
	}
	if cfg.Simulation {
		c.sim = newSimulator(baseURL)
	}
	return c
}

// apiError 网关返回的非2xx响应
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("transbank status=%d: %s", e.StatusCode, e.Message)
}

type createBody struct {
	BuyOrder  string `json:"buy_order"`
	SessionID string `json:"session_id"`
	Amount    int64  `json:"amount"`
	ReturnURL string `json:"return_url"`
}

type createResult struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

type commitResult struct {
	VCI               string    `json:"vci"`
	Amount            int64     `json:"amount"`
	Status            string    `json:"status"`
	BuyOrder          string    `json:"buy_order"`
	SessionID         string    `json:"session_id"`
	AuthorizationCode string    `json:"authorization_code"`
	PaymentTypeCode   string    `json:"payment_type_code"`
	ResponseCode      int       `json:"response_code"`
	TransactionDate   time.Time `json:"transaction_date"`
	CardDetail        struct {
		CardNumber string `json:"card_number"`
	} `json:"card_detail"`
}

type errorBody struct {
	ErrorMessage string `json:"error_message"`
}

// CreateTransaction 建单
func (c *Client) CreateTransaction(ctx context.Context, req payment.CreateTransactionRequest) (*payment.Transaction, error) {
	if c.sim != nil {
		return c.sim.create(req), nil
	}

	var out createResult
	err := c.call(ctx, "create", func(ctx context.Context) (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetBody(createBody{
				BuyOrder:  req.BuyOrder,
				SessionID: req.SessionID,
				Amount:    req.Amount,
				ReturnURL: req.ReturnURL,
			}).
			SetResult(&out).
			SetError(&errorBody{}).
			Post(transactionsPath)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("transbank transaction created",
		zap.String("buy_order", req.BuyOrder),
		zap.Int64("amount", req.Amount),
	)
	return &payment.Transaction{Token: out.Token, URL: out.URL}, nil
}

// CommitTransaction 确认交易
func (c *Client) CommitTransaction(ctx context.Context, token string) (*payment.CommitResult, error) {
	if c.sim != nil {
		return c.sim.commit(token)
	}

	var out commitResult
	err := c.call(ctx, "commit", func(ctx context.Context) (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetPathParam("token", token).
			SetResult(&out).
			SetError(&errorBody{}).
			Put(transactionsPath + "/{token}")
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("transbank transaction committed",
		zap.String("buy_order", out.BuyOrder),
		zap.String("status", out.Status),
		zap.Int("response_code", out.ResponseCode),
	)
	return &payment.CommitResult{
		Status:            out.Status,
		AuthorizationCode: out.AuthorizationCode,
		Amount:            out.Amount,
		BuyOrder:          out.BuyOrder,
		ResponseCode:      out.ResponseCode,
		CardLast4:         out.CardDetail.CardNumber,
		TransactionDate:   out.TransactionDate,
	}, nil
}

// Info 网关配置
func (c *Client) Info() payment.GatewayInfo {
	return payment.GatewayInfo{
		Environment: c.cfg.Environment,
		Simulation:  c.cfg.Simulation,
		SuccessRate: c.cfg.SuccessRate,
		PendingRate: c.cfg.PendingRate,
		FailureRate: c.cfg.FailureRate,
	}
}

// call 在熔断器保护下发请求,并记录耗时
func (c *Client) call(ctx context.Context, operation string, do func(ctx context.Context) (*resty.Response, error)) error {
	start := time.Now()
	err := c.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		resp, err := do(ctx)
		if err != nil {
			return err
		}
		if resp.IsError() {
			msg := resp.Status()
			if body, ok := resp.Error().(*errorBody); ok && body.ErrorMessage != "" {
				msg = body.ErrorMessage
			}
			return &apiError{StatusCode: resp.StatusCode(), Message: msg}
		}
		return nil
	})

	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.ObserveHistogramVec(metrics.GatewayRequestDuration,
		map[string]string{"operation": operation, "result": result},
		time.Since(start).Seconds())

	if err == nil {
		return nil
	}
	logger.FromContext(ctx).Warn("transbank request failed",
		zap.String("operation", operation),
		zap.String("breaker", c.breaker.State().String()),
		zap.Error(err),
	)
	if errors.Is(err, circuitbreaker.ErrOpenState) {
		return apperrors.ErrGatewayUnavailable.WithErr(err)
	}
	return apperrors.ErrGatewayError.WithErr(fmt.Errorf("%s: %w", operation, err))
}
