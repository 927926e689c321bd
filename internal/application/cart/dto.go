package cart

import (
	"time"

	"github.com/xiebiao/autoparts/internal/domain/cart"
)

// =========================================
// 应用层DTO
// =========================================

// CreateCartRequest 创建购物车请求
type CreateCartRequest struct {
	UserID *uint // 匿名用户为nil
}

// AddLineRequest 加购请求
type AddLineRequest struct {
	CartID    uint
	ProductID uint
	BranchID  uint
	Quantity  int
}

// UpdateLineRequest 修改数量请求,Quantity为0表示删除该行
type UpdateLineRequest struct {
	CartID    uint
	ProductID uint
	Quantity  int
}

// CartDTO 购物车视图
type CartDTO struct {
	ID        uint      `json:"id"`
	UserID    *uint     `json:"user_id,omitempty"`
	Status    string    `json:"status"`
	Lines     []LineDTO `json:"lines"`
	Total     int64     `json:"total"`
	ItemCount int       `json:"item_count"`
	CreatedAt time.Time `json:"created_at"`
}

// LineDTO 购物车明细视图
type LineDTO struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	BranchID    uint   `json:"branch_id"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	LineTotal   int64  `json:"line_total"`
}

// toCartDTO 领域实体 → DTO,names可为nil
func toCartDTO(c *cart.Cart, names map[uint]string) *CartDTO {
	lines := make([]LineDTO, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, LineDTO{
			ProductID:   l.ProductID,
			ProductName: names[l.ProductID],
			BranchID:    l.BranchID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal,
		})
	}
	return &CartDTO{
		ID:        c.ID,
		UserID:    c.UserID,
		Status:    string(c.Status),
		Lines:     lines,
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
		CreatedAt: c.CreatedAt,
	}
}
