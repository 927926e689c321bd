package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/autoparts/internal/application/order"
	"github.com/xiebiao/autoparts/internal/interface/http/dto"
	"github.com/xiebiao/autoparts/internal/interface/http/middleware"
	"github.com/xiebiao/autoparts/pkg/response"
)

// OrderHandler 结账与订单
type OrderHandler struct {
	checkout *apporder.CheckoutUseCase
	get      *apporder.GetOrderUseCase
	list     *apporder.ListOrdersUseCase
	deliver  *apporder.DeliverOrderUseCase
	cancel   *apporder.CancelOrderUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	checkout *apporder.CheckoutUseCase,
	get *apporder.GetOrderUseCase,
	list *apporder.ListOrdersUseCase,
	deliver *apporder.DeliverOrderUseCase,
	cancel *apporder.CancelOrderUseCase,
) *OrderHandler {
	return &OrderHandler{
		checkout: checkout,
		get:      get,
		list:     list,
		deliver:  deliver,
		cancel:   cancel,
	}
}

// Checkout 结账
// @Summary      结账
// @Description  购物车转为订单并创建PENDING支付;同一购物车只能结账一次
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CheckoutRequest true "结账信息"
// @Success      200 {object} response.Response{data=apporder.CheckoutResponse}
// @Failure      400 {object} response.Response "购物车为空"
// @Failure      409 {object} response.Response "购物车已结账"
// @Router       /api/v1/checkout [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	actor := middleware.GetActor(c)
	result, err := h.checkout.Execute(c.Request.Context(), apporder.CheckoutRequest{
		CartID:        req.CartID,
		UserID:        req.UserID,
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
		Actor:         actor,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// List 订单列表
// @Summary      订单列表
// @Description  客户只能看到自己的订单;员工可按user_id筛选
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        user_id   query int    false "用户ID(员工)"
// @Param        status    query string false "订单状态"
// @Param        page      query int    false "页码" default(1)
// @Param        page_size query int    false "每页数量" default(20)
// @Success      200 {object} response.Response{data=apporder.ListOrdersResponse}
// @Router       /api/v1/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var q dto.ListOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.list.Execute(c.Request.Context(), apporder.ListOrdersRequest{
		UserID:   q.UserID,
		Status:   q.Status,
		Page:     q.Page,
		PageSize: q.PageSize,
		Actor:    middleware.GetActor(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Get 订单详情
// @Summary      订单详情
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=apporder.OrderDetailDTO}
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.get.Execute(c.Request.Context(), id, middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetByNo 按订单号查询订单详情
// @Summary      按订单号查询订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        order_no path string true "订单号"
// @Success      200 {object} response.Response{data=apporder.OrderDetailDTO}
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/by-no/{order_no} [get]
func (h *OrderHandler) GetByNo(c *gin.Context) {
	result, err := h.get.ExecuteByNo(c.Request.Context(), c.Param("order_no"), middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Deliver 标记已交付
// @Summary      订单交付
// @Description  CONFIRMED → DELIVERED,仅管理员
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=apporder.OrderDTO}
// @Failure      409 {object} response.Response "状态不允许"
// @Router       /api/v1/orders/{id}/deliver [post]
func (h *OrderHandler) Deliver(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.deliver.Execute(c.Request.Context(), id, middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Cancel 取消订单
// @Summary      取消订单
// @Description  PENDING/FAILED直接取消;CONFIRMED由管理员取消并回补库存
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                    true  "订单ID"
// @Param        request body dto.CancelOrderRequest false "取消原因"
// @Success      200 {object} response.Response{data=apporder.OrderDTO}
// @Failure      409 {object} response.Response "状态不允许"
// @Router       /api/v1/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
	}

	result, err := h.cancel.Execute(c.Request.Context(), apporder.CancelOrderRequest{
		OrderID: id,
		Reason:  req.Reason,
		Actor:   middleware.GetActor(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
