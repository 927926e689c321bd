package handler

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	apppayment "github.com/xiebiao/autoparts/internal/application/payment"
	"github.com/xiebiao/autoparts/internal/interface/http/dto"
	"github.com/xiebiao/autoparts/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
	"github.com/xiebiao/autoparts/pkg/response"
)

// returnPath WebPay回跳地址(相对public_url)
const returnPath = "/api/v1/transbank/return"

// PaymentHandler 支付
type PaymentHandler struct {
	confirm        *apppayment.ConfirmPaymentUseCase
	fail           *apppayment.FailPaymentUseCase
	transaction    *apppayment.CreateTransactionUseCase
	gatewayConfirm *apppayment.GatewayConfirmUseCase
	simulate       *apppayment.SimulatePaymentUseCase
	stats          *apppayment.StatsUseCase
	publicURL      string
}

// NewPaymentHandler 创建支付处理器
// publicURL用于拼接WebPay回跳地址,如 https://api.example.cl
func NewPaymentHandler(
	confirm *apppayment.ConfirmPaymentUseCase,
	fail *apppayment.FailPaymentUseCase,
	transaction *apppayment.CreateTransactionUseCase,
	gatewayConfirm *apppayment.GatewayConfirmUseCase,
	simulate *apppayment.SimulatePaymentUseCase,
	stats *apppayment.StatsUseCase,
	publicURL string,
) *PaymentHandler {
	return &PaymentHandler{
		confirm:        confirm,
		fail:           fail,
		transaction:    transaction,
		gatewayConfirm: gatewayConfirm,
		simulate:       simulate,
		stats:          stats,
		publicURL:      strings.TrimRight(publicURL, "/"),
	}
}

// Confirm 确认支付
// @Summary      确认支付
// @Description  带token时向WebPay确认交易;否则按external_ref人工确认(仅管理员)。
// @Description  确认时按购物车明细扣减对应门店库存,重复确认返回already_processed=true。
// @Tags         支付
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.ConfirmPaymentRequest true "订单/Token"
// @Success      200 {object} response.Response{data=apppayment.Outcome}
// @Failure      400 {object} response.Response "库存不足"
// @Failure      403 {object} response.Response "无权限"
// @Failure      500 {object} response.Response "需要人工对账"
// @Failure      502 {object} response.Response "网关错误"
// @Router       /api/v1/payments/confirm [post]
func (h *PaymentHandler) Confirm(c *gin.Context) {
	var req dto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	var (
		result *apppayment.Outcome
		err    error
	)
	if req.Token != "" {
		result, err = h.gatewayConfirm.Execute(c.Request.Context(), apppayment.GatewayConfirmRequest{
			OrderID: req.OrderID,
			Token:   req.Token,
		})
	} else {
		if strings.TrimSpace(req.ExternalRef) == "" {
			response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: 缺少external_ref")
			return
		}
		result, err = h.confirm.Execute(c.Request.Context(), apppayment.ConfirmRequest{
			OrderID:     req.OrderID,
			ExternalRef: req.ExternalRef,
			Actor:       middleware.GetActor(c),
		})
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Fail 标记支付失败
// @Summary      支付失败
// @Tags         支付
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.FailPaymentRequest true "订单/原因"
// @Success      200 {object} response.Response{data=apppayment.Outcome}
// @Router       /api/v1/payments/fail [post]
func (h *PaymentHandler) Fail(c *gin.Context) {
	var req dto.FailPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.fail.Execute(c.Request.Context(), apppayment.FailRequest{
		OrderID: req.OrderID,
		Reason:  req.Reason,
		Actor:   middleware.GetActor(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateTransaction 发起WebPay交易
// @Summary      发起WebPay交易
// @Description  返回token和支付页url,前端以token_ws表单提交到url
// @Tags         支付
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateTransactionRequest true "订单"
// @Success      200 {object} response.Response{data=apppayment.TransactionResponse}
// @Failure      502 {object} response.Response "网关错误"
// @Router       /api/v1/payments/transaction [post]
func (h *PaymentHandler) CreateTransaction(c *gin.Context) {
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.transaction.Execute(c.Request.Context(), apppayment.CreateTransactionRequest{
		OrderID:   req.OrderID,
		ReturnURL: h.returnURL(req.OrderID),
		Actor:     middleware.GetActor(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Return WebPay回跳
// @Summary      WebPay回跳
// @Description  支付完成带token_ws → 确认交易;用户取消只带TBK_TOKEN → 标记失败
// @Tags         支付
// @Produce      json
// @Param        order_id  query int    true  "订单ID"
// @Param        token_ws  query string false "交易Token"
// @Param        TBK_TOKEN query string false "取消时的Token"
// @Success      200 {object} response.Response{data=apppayment.Outcome}
// @Router       /api/v1/transbank/return [get]
// @Router       /api/v1/transbank/return [post]
func (h *PaymentHandler) Return(c *gin.Context) {
	var req dto.WebpayReturn
	if err := c.ShouldBind(&req); err != nil {
		response.BindError(c, err)
		return
	}

	var (
		result *apppayment.Outcome
		err    error
	)
	switch {
	case req.TokenWS != "":
		result, err = h.gatewayConfirm.Execute(c.Request.Context(), apppayment.GatewayConfirmRequest{
			OrderID: req.OrderID,
			Token:   req.TokenWS,
		})
	case req.TBKToken != "":
		result, err = h.gatewayConfirm.Abort(c.Request.Context(), apppayment.GatewayConfirmRequest{
			OrderID: req.OrderID,
			Token:   req.TBKToken,
		})
	default:
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: 缺少token_ws")
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Simulate 模拟支付
// @Summary      模拟支付(开发环境)
// @Description  scenario: random/success/pending/failure,random按配置权重抽取
// @Tags         支付
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.SimulatePaymentRequest true "订单/场景"
// @Success      200 {object} response.Response{data=apppayment.SimulateResponse}
// @Router       /api/v1/payments/simulate [post]
func (h *PaymentHandler) Simulate(c *gin.Context) {
	var req dto.SimulatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.simulate.Execute(c.Request.Context(), apppayment.SimulateRequest{
		OrderID:  req.OrderID,
		Scenario: strings.ToLower(req.Scenario),
		Actor:    middleware.GetActor(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Stats 支付统计
// @Summary      支付统计
// @Description  按状态统计支付和订单、销量前5商品、网关配置
// @Tags         支付
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=apppayment.StatsResponse}
// @Router       /api/v1/payments/stats [get]
func (h *PaymentHandler) Stats(c *gin.Context) {
	result, err := h.stats.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (h *PaymentHandler) returnURL(orderID uint) string {
	return fmt.Sprintf("%s%s?order_id=%d", h.publicURL, returnPath, orderID)
}
