package cart

import (
	"time"
)

// Status 购物车状态
type Status string

const (
	StatusOpen       Status = "OPEN"        // 可修改
	StatusCheckedOut Status = "CHECKED_OUT" // 已结算,不可再修改,一个购物车最多生成一个订单
)

// Cart 购物车(聚合根)
// 设计说明:
// 1. UserID可为空,匿名用户也可以先加购,结算时再绑定用户
// 2. Lines按ProductID唯一,重复加购累加数量
type Cart struct {
	ID        uint
	UserID    *uint
	Status    Status
	Lines     []Line
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Line 购物车明细
// UnitPrice是第一次加入时的价格快照,之后商品调价不影响该行
type Line struct {
	ID        uint
	CartID    uint
	ProductID uint
	BranchID  uint
	Quantity  int
	UnitPrice int64
	LineTotal int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCart 创建空购物车
func NewCart(userID *uint) *Cart {
	now := time.Now()
	return &Cart{
		UserID:    userID,
		Status:    StatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsOpen 是否可修改
func (c *Cart) IsOpen() bool {
	return c.Status == StatusOpen
}

// EnsureOpen 修改前检查
func (c *Cart) EnsureOpen() error {
	if !c.IsOpen() {
		return ErrCartClosed
	}
	return nil
}

// IsEmpty 是否没有明细
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// FindLine 按商品查找明细
func (c *Cart) FindLine(productID uint) (*Line, bool) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i], true
		}
	}
	return nil, false
}

// Total 购物车总金额(按快照单价)
func (c *Cart) Total() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.LineTotal
	}
	return total
}

// ItemCount 商品总件数
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// PlanAdd 计算加购后的明细(不修改购物车)
// 1. 已有该商品:数量累加,单价保持快照,门店必须一致
// 2. 没有该商品:用当前价格新建一行
// 返回的isNew表示需要插入还是更新
func (c *Cart) PlanAdd(productID, branchID uint, quantity int, currentPrice int64) (line Line, isNew bool, err error) {
	if err := c.EnsureOpen(); err != nil {
		return Line{}, false, err
	}
	if quantity <= 0 {
		return Line{}, false, ErrInvalidQuantity
	}

	if existing, ok := c.FindLine(productID); ok {
		if existing.BranchID != branchID {
			return Line{}, false, ErrBranchMismatch
		}
		updated := *existing
		updated.SetQuantity(existing.Quantity + quantity)
		return updated, false, nil
	}

	now := time.Now()
	line = Line{
		CartID:    c.ID,
		ProductID: productID,
		BranchID:  branchID,
		UnitPrice: currentPrice,
		CreatedAt: now,
	}
	line.SetQuantity(quantity)
	return line, true, nil
}

// Close 结算:OPEN → CHECKED_OUT
func (c *Cart) Close() error {
	if err := c.EnsureOpen(); err != nil {
		return err
	}
	if c.IsEmpty() {
		return ErrEmptyCart
	}
	c.Status = StatusCheckedOut
	c.UpdatedAt = time.Now()
	return nil
}

// SetQuantity 设置数量并按快照单价重算小计
func (l *Line) SetQuantity(quantity int) {
	l.Quantity = quantity
	l.LineTotal = l.UnitPrice * int64(quantity)
	l.UpdatedAt = time.Now()
}
