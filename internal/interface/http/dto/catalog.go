package dto

// CreateProductRequest 新增商品
type CreateProductRequest struct {
	SKU         string `json:"sku" binding:"omitempty,max=50"`
	Name        string `json:"name" binding:"required,max=200"`
	Brand       string `json:"brand" binding:"required,max=100"`
	CategoryID  uint   `json:"category_id"`
	Price       int64  `json:"price" binding:"required,min=1"`
	StockMin    *int   `json:"stock_min" binding:"omitempty,min=0"` // 不传时取配置默认值
	ImageURL    string `json:"image_url" binding:"omitempty,max=500"`
	Description string `json:"description"`
}

// UpdatePriceRequest 调价
type UpdatePriceRequest struct {
	Price int64 `json:"price" binding:"required,min=1"`
}

// ListProductsQuery 商品列表查询参数
type ListProductsQuery struct {
	Keyword    string `form:"q"`
	CategoryID uint   `form:"category_id"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// CreateBranchRequest 新增门店
type CreateBranchRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Address string `json:"address" binding:"max=255"`
}

// CreateCategoryRequest 新增分类
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}
