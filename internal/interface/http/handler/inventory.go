package handler

import (
	"github.com/gin-gonic/gin"

	appaudit "github.com/xiebiao/autoparts/internal/application/audit"
	appinventory "github.com/xiebiao/autoparts/internal/application/inventory"
	"github.com/xiebiao/autoparts/internal/interface/http/dto"
	"github.com/xiebiao/autoparts/internal/interface/http/middleware"
	"github.com/xiebiao/autoparts/pkg/response"
)

// InventoryHandler 库存与审计
type InventoryHandler struct {
	adjust *appinventory.AdjustStockUseCase
	query  *appinventory.QueryStockUseCase
	audit  *appaudit.ListEntriesUseCase
}

// NewInventoryHandler 创建库存处理器
func NewInventoryHandler(
	adjust *appinventory.AdjustStockUseCase,
	query *appinventory.QueryStockUseCase,
	audit *appaudit.ListEntriesUseCase,
) *InventoryHandler {
	return &InventoryHandler{adjust: adjust, query: query, audit: audit}
}

// Adjust 入库/出库
// @Summary      库存调整
// @Description  STOCK_IN入库(没有记录时新建),STOCK_OUT出库;ADMIN或BODEGUERO
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AdjustStockRequest true "调整信息"
// @Success      200 {object} response.Response{data=appinventory.AdjustStockResponse}
// @Failure      400 {object} response.Response "库存不足"
// @Failure      403 {object} response.Response "无权限"
// @Router       /api/v1/inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.adjust.Execute(c.Request.Context(), appinventory.AdjustStockRequest{
		ProductID: req.ProductID,
		BranchID:  req.BranchID,
		Type:      req.Type,
		Quantity:  req.Quantity,
		Note:      req.Note,
		Actor:     middleware.GetActor(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Records 门店库存
// @Summary      门店库存
// @Tags         库存
// @Produce      json
// @Security     BearerAuth
// @Param        product_id query int false "商品ID"
// @Param        branch_id  query int false "门店ID"
// @Success      200 {object} response.Response{data=[]appinventory.RecordDTO}
// @Router       /api/v1/inventory [get]
func (h *InventoryHandler) Records(c *gin.Context) {
	var q dto.StockQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.query.ListRecords(c.Request.Context(), q.ProductID, q.BranchID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Movements 库存流水
// @Summary      库存流水
// @Tags         库存
// @Produce      json
// @Security     BearerAuth
// @Param        product_id query int false "商品ID"
// @Param        branch_id  query int false "门店ID"
// @Param        order_id   query int false "订单ID"
// @Param        page       query int false "页码" default(1)
// @Param        page_size  query int false "每页数量" default(20)
// @Success      200 {object} response.Response{data=appinventory.ListMovementsResponse}
// @Router       /api/v1/inventory/movements [get]
func (h *InventoryHandler) Movements(c *gin.Context) {
	var q dto.MovementsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.query.ListMovements(c.Request.Context(), appinventory.ListMovementsRequest{
		ProductID: q.ProductID,
		BranchID:  q.BranchID,
		OrderID:   q.OrderID,
		Page:      q.Page,
		PageSize:  q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Audit 审计日志
// @Summary      审计日志
// @Tags         审计
// @Produce      json
// @Security     BearerAuth
// @Param        user_id   query int false "用户ID"
// @Param        page      query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Success      200 {object} response.Response{data=appaudit.ListEntriesResponse}
// @Router       /api/v1/audit [get]
func (h *InventoryHandler) Audit(c *gin.Context) {
	var q dto.AuditQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.audit.Execute(c.Request.Context(), appaudit.ListEntriesRequest{
		UserID:   q.UserID,
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
