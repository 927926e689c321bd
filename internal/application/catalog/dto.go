// Package catalog 商品、门店、分类用例
package catalog

import (
	"time"

	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/catalog"
)

// CreateProductRequest 新增商品
type CreateProductRequest struct {
	SKU         string
	Name        string
	Brand       string
	CategoryID  uint
	Price       int64 // CLP
	StockMin    int
	ImageURL    string
	Description string
	Actor       shared.Actor
}

// UpdatePriceRequest 调价
type UpdatePriceRequest struct {
	ProductID uint
	Price     int64 // CLP
	Actor     shared.Actor
}

// ListProductsRequest 商品列表查询
type ListProductsRequest struct {
	Keyword    string // 匹配名称、品牌、SKU
	CategoryID uint
	Page       int
	PageSize   int
}

// ProductDTO 商品(列表项)
type ProductDTO struct {
	ID         uint   `json:"id"`
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	Brand      string `json:"brand"`
	CategoryID uint   `json:"category_id"`
	Price      int64  `json:"price"`
	StockMin   int    `json:"stock_min"`
	ImageURL   string `json:"image_url"`
	TotalStock int    `json:"total_stock"`
	LowStock   bool   `json:"low_stock"`
	CreatedAt  string `json:"created_at"`
}

// BranchStockDTO 单门店库存
type BranchStockDTO struct {
	BranchID   uint   `json:"branch_id"`
	BranchName string `json:"branch_name"`
	Stock      int    `json:"stock"`
}

// ProductDetailDTO 商品详情(含各门店库存)
type ProductDetailDTO struct {
	ProductDTO
	Description string           `json:"description"`
	Stocks      []BranchStockDTO `json:"stocks"`
}

// ListProductsResponse 商品分页
type ListProductsResponse struct {
	List       []ProductDTO `json:"list"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}

// BranchDTO 门店
type BranchDTO struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryDTO 分类
type CategoryDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func toProductDTO(p *catalog.Product, totalStock int) ProductDTO {
	return ProductDTO{
		ID:         p.ID,
		SKU:        p.SKU,
		Name:       p.Name,
		Brand:      p.Brand,
		CategoryID: p.CategoryID,
		Price:      p.Price,
		StockMin:   p.StockMin,
		ImageURL:   p.ImageURL,
		TotalStock: totalStock,
		LowStock:   p.IsLowStock(totalStock),
		CreatedAt:  p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func toBranchDTO(b *catalog.Branch) BranchDTO {
	return BranchDTO{ID: b.ID, Name: b.Name, Address: b.Address, CreatedAt: b.CreatedAt}
}
