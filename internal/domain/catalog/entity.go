package catalog

import (
	"strings"
	"time"
)

// Product 商品实体
// 设计说明:
// 1. 价格以CLP整数存储(比索没有小数位)
// 2. SKU是业务唯一标识(数据库唯一索引保证)
// 3. 库存不在商品上,按门店存放在inventory.Record
// 4. StockMin是安全库存,总库存<=StockMin时触发低库存告警
type Product struct {
	ID          uint
	SKU         string
	Name        string
	Brand       string
	CategoryID  uint
	Price       int64 // CLP
	StockMin    int
	ImageURL    string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProduct 创建商品(工厂方法,包含业务校验)
func NewProduct(sku, name, brand string, categoryID uint, price int64, stockMin int, imageURL, description string) (*Product, error) {
	name = strings.TrimSpace(name)
	brand = strings.TrimSpace(brand)
	if name == "" || brand == "" {
		return nil, ErrInvalidProductInfo
	}
	if price < 1 {
		return nil, ErrInvalidPrice
	}
	if stockMin < 0 {
		return nil, ErrInvalidStockMin
	}

	now := time.Now()
	return &Product{
		SKU:         strings.TrimSpace(sku),
		Name:        name,
		Brand:       brand,
		CategoryID:  categoryID,
		Price:       price,
		StockMin:    stockMin,
		ImageURL:    imageURL,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdatePrice 调价
// 已加入购物车的明细保留加入时的单价,不受影响
func (p *Product) UpdatePrice(price int64) error {
	if price < 1 {
		return ErrInvalidPrice
	}
	p.Price = price
	p.UpdatedAt = time.Now()
	return nil
}

// IsLowStock 总库存是否跌破安全库存
func (p *Product) IsLowStock(totalStock int) bool {
	return totalStock <= p.StockMin
}

// Branch 门店(库存按门店划分)
type Branch struct {
	ID        uint
	Name      string
	Address   string
	CreatedAt time.Time
}

// NewBranch 创建门店
func NewBranch(name, address string) (*Branch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidBranchInfo
	}
	return &Branch{Name: name, Address: strings.TrimSpace(address), CreatedAt: time.Now()}, nil
}

// Category 商品分类
type Category struct {
	ID   uint
	Name string
}

// NewCategory 创建分类
func NewCategory(name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidCategoryInfo
	}
	return &Category{Name: name}, nil
}
