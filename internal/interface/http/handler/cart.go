package handler

import (
	"github.com/gin-gonic/gin"

	appcart "github.com/xiebiao/autoparts/internal/application/cart"
	"github.com/xiebiao/autoparts/internal/interface/http/dto"
	"github.com/xiebiao/autoparts/internal/interface/http/middleware"
	"github.com/xiebiao/autoparts/pkg/response"
)

// CartHandler 购物车
// 购物车允许匿名使用,登录用户创建时绑定user_id
type CartHandler struct {
	createCart *appcart.CreateCartUseCase
	getCart    *appcart.GetCartUseCase
	addLine    *appcart.AddLineUseCase
	updateLine *appcart.UpdateLineUseCase
	removeLine *appcart.RemoveLineUseCase
}

// NewCartHandler 创建购物车处理器
func NewCartHandler(
	createCart *appcart.CreateCartUseCase,
	getCart *appcart.GetCartUseCase,
	addLine *appcart.AddLineUseCase,
	updateLine *appcart.UpdateLineUseCase,
	removeLine *appcart.RemoveLineUseCase,
) *CartHandler {
	return &CartHandler{
		createCart: createCart,
		getCart:    getCart,
		addLine:    addLine,
		updateLine: updateLine,
		removeLine: removeLine,
	}
}

// Create 新建购物车
// @Summary      新建购物车
// @Tags         购物车
// @Produce      json
// @Success      200 {object} response.Response{data=appcart.CartDTO}
// @Router       /api/v1/carts [post]
func (h *CartHandler) Create(c *gin.Context) {
	var req appcart.CreateCartRequest
	if id := middleware.GetUserID(c); id != 0 {
		req.UserID = &id
	}

	result, err := h.createCart.Execute(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Get 查看购物车
// @Summary      查看购物车
// @Tags         购物车
// @Produce      json
// @Param        id path int true "购物车ID"
// @Success      200 {object} response.Response{data=appcart.CartDTO}
// @Failure      404 {object} response.Response "购物车不存在"
// @Router       /api/v1/carts/{id} [get]
func (h *CartHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.getCart.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// AddLine 加购
// @Summary      加入购物车
// @Description  同一商品再次加入时数量累加;只校验门店库存,不预占
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Param        id      path int                true "购物车ID"
// @Param        request body dto.AddLineRequest true "商品/门店/数量"
// @Success      200 {object} response.Response{data=appcart.CartDTO}
// @Failure      400 {object} response.Response "库存不足"
// @Failure      409 {object} response.Response "购物车已关闭"
// @Router       /api/v1/carts/{id}/lines [post]
func (h *CartHandler) AddLine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.addLine.Execute(c.Request.Context(), appcart.AddLineRequest{
		CartID:    id,
		ProductID: req.ProductID,
		BranchID:  req.BranchID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateLine 修改数量
// @Summary      修改购物车数量
// @Description  quantity=0时删除该行
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Param        id         path int                   true "购物车ID"
// @Param        product_id path int                   true "商品ID"
// @Param        request    body dto.UpdateLineRequest true "数量"
// @Success      200 {object} response.Response{data=appcart.CartDTO}
// @Router       /api/v1/carts/{id}/lines/{product_id} [put]
func (h *CartHandler) UpdateLine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	productID, ok := pathID(c, "product_id")
	if !ok {
		return
	}
	var req dto.UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.updateLine.Execute(c.Request.Context(), appcart.UpdateLineRequest{
		CartID:    id,
		ProductID: productID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// RemoveLine 删除商品
// @Summary      删除购物车商品
// @Tags         购物车
// @Produce      json
// @Param        id         path int true "购物车ID"
// @Param        product_id path int true "商品ID"
// @Success      200 {object} response.Response{data=appcart.CartDTO}
// @Router       /api/v1/carts/{id}/lines/{product_id} [delete]
func (h *CartHandler) RemoveLine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	productID, ok := pathID(c, "product_id")
	if !ok {
		return
	}

	result, err := h.removeLine.Execute(c.Request.Context(), id, productID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
