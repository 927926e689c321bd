package handler

import (
	"github.com/gin-gonic/gin"

	appcatalog "github.com/xiebiao/autoparts/internal/application/catalog"
	"github.com/xiebiao/autoparts/internal/interface/http/dto"
	"github.com/xiebiao/autoparts/internal/interface/http/middleware"
	"github.com/xiebiao/autoparts/pkg/response"
)

// CatalogHandler 商品/门店/分类
type CatalogHandler struct {
	createProduct *appcatalog.CreateProductUseCase
	updatePrice   *appcatalog.UpdatePriceUseCase
	getProduct    *appcatalog.GetProductUseCase
	listProducts  *appcatalog.ListProductsUseCase
	branches      *appcatalog.BranchUseCase
	categories    *appcatalog.CategoryUseCase

	defaultStockMin int
}

// NewCatalogHandler 创建目录处理器
func NewCatalogHandler(
	createProduct *appcatalog.CreateProductUseCase,
	updatePrice *appcatalog.UpdatePriceUseCase,
	getProduct *appcatalog.GetProductUseCase,
	listProducts *appcatalog.ListProductsUseCase,
	branches *appcatalog.BranchUseCase,
	categories *appcatalog.CategoryUseCase,
	defaultStockMin int,
) *CatalogHandler {
	return &CatalogHandler{
		createProduct:   createProduct,
		updatePrice:     updatePrice,
		getProduct:      getProduct,
		listProducts:    listProducts,
		branches:        branches,
		categories:      categories,
		defaultStockMin: defaultStockMin,
	}
}

// ListProducts 商品列表
// @Summary      商品列表
// @Description  按关键字(名称/品牌/SKU)和分类筛选,附带各门店合计库存
// @Tags         商品
// @Produce      json
// @Param        q           query string false "关键字"
// @Param        category_id query int    false "分类ID"
// @Param        page        query int    false "页码" default(1)
// @Param        page_size   query int    false "每页数量" default(20)
// @Success      200 {object} response.Response{data=appcatalog.ListProductsResponse}
// @Router       /api/v1/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var q dto.ListProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.listProducts.Execute(c.Request.Context(), appcatalog.ListProductsRequest{
		Keyword:    q.Keyword,
		CategoryID: q.CategoryID,
		Page:       q.Page,
		PageSize:   q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetProduct 商品详情
// @Summary      商品详情
// @Description  含各门店库存
// @Tags         商品
// @Produce      json
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response{data=appcatalog.ProductDetailDTO}
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /api/v1/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.getProduct.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateProduct 新增商品
// @Summary      新增商品
// @Tags         商品
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateProductRequest true "商品信息"
// @Success      200 {object} response.Response{data=appcatalog.ProductDTO}
// @Failure      403 {object} response.Response "仅管理员"
// @Failure      409 {object} response.Response "SKU已存在"
// @Router       /api/v1/products [post]
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	stockMin := h.defaultStockMin
	if req.StockMin != nil {
		stockMin = *req.StockMin
	}

	result, err := h.createProduct.Execute(c.Request.Context(), appcatalog.CreateProductRequest{
		SKU:         req.SKU,
		Name:        req.Name,
		Brand:       req.Brand,
		CategoryID:  req.CategoryID,
		Price:       req.Price,
		StockMin:    stockMin,
		ImageURL:    req.ImageURL,
		Description: req.Description,
		Actor:       middleware.GetActor(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdatePrice 商品调价
// @Summary      商品调价
// @Description  只影响之后加入购物车的明细
// @Tags         商品
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                    true "商品ID"
// @Param        request body dto.UpdatePriceRequest true "新单价(CLP)"
// @Success      200 {object} response.Response{data=appcatalog.ProductDTO}
// @Failure      403 {object} response.Response "仅管理员"
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /api/v1/products/{id}/price [put]
func (h *CatalogHandler) UpdatePrice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.updatePrice.Execute(c.Request.Context(), appcatalog.UpdatePriceRequest{
		ProductID: id,
		Price:     req.Price,
		Actor:     middleware.GetActor(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListBranches 门店列表
// @Summary      门店列表
// @Tags         门店
// @Produce      json
// @Success      200 {object} response.Response{data=[]appcatalog.BranchDTO}
// @Router       /api/v1/branches [get]
func (h *CatalogHandler) ListBranches(c *gin.Context) {
	result, err := h.branches.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateBranch 新增门店
// @Summary      新增门店
// @Tags         门店
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateBranchRequest true "门店信息"
// @Success      200 {object} response.Response{data=appcatalog.BranchDTO}
// @Router       /api/v1/branches [post]
func (h *CatalogHandler) CreateBranch(c *gin.Context) {
	var req dto.CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.branches.Create(c.Request.Context(), req.Name, req.Address, middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListCategories 分类列表
// @Summary      分类列表
// @Tags         分类
// @Produce      json
// @Success      200 {object} response.Response{data=[]appcatalog.CategoryDTO}
// @Router       /api/v1/categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	result, err := h.categories.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateCategory 新增分类
// @Summary      新增分类
// @Tags         分类
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateCategoryRequest true "分类名称"
// @Success      200 {object} response.Response{data=appcatalog.CategoryDTO}
// @Router       /api/v1/categories [post]
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.categories.Create(c.Request.Context(), req.Name, middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
