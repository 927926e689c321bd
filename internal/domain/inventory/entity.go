package inventory

import (
	"time"
)

// Record 门店库存记录
// 设计说明:
// 1. (ProductID, BranchID)唯一,每个商品在每个门店只有一行
// 2. Stock>=0 由条件UPDATE保证(UPDATE ... WHERE stock >= ?),不在应用层读改写
type Record struct {
	ID        uint
	ProductID uint
	BranchID  uint
	Stock     int
	UpdatedAt time.Time
}

// CanDecrease 判断库存是否足够(仅用于加入购物车时的预检查,不预占)
func (r *Record) CanDecrease(quantity int) bool {
	return quantity > 0 && r.Stock >= quantity
}

// MovementType 库存流水类型
type MovementType string

const (
	MovementStockIn  MovementType = "STOCK_IN"  // 入库
	MovementStockOut MovementType = "STOCK_OUT" // 出库(盘亏、损耗)
	MovementSale     MovementType = "SALE"      // 销售(支付确认时扣减)
	MovementReturn   MovementType = "RETURN"    // 退回(已确认订单取消)
)

// IsValid 闭合枚举校验
func (t MovementType) IsValid() bool {
	switch t {
	case MovementStockIn, MovementStockOut, MovementSale, MovementReturn:
		return true
	}
	return false
}

// IsIncrease 该类型是否增加库存
func (t MovementType) IsIncrease() bool {
	return t == MovementStockIn || t == MovementReturn
}

// Movement 库存流水(只增不改)
// Quantity带符号:正数=增加,负数=减少
type Movement struct {
	ID         uint
	ProductID  uint
	BranchID   uint
	Type       MovementType
	Quantity   int
	StockAfter int
	OrderID    uint // 0表示与订单无关
	UserID     uint // 操作人,0表示系统
	Note       string
	CreatedAt  time.Time
}

// Adjustment 一次库存调整请求
type Adjustment struct {
	ProductID uint
	BranchID  uint
	Type      MovementType
	Quantity  int // 必须>0,方向由Type决定
	OrderID   uint
	UserID    uint
	Note      string
}

// Validate 校验调整请求
func (a Adjustment) Validate() error {
	if a.ProductID == 0 || a.BranchID == 0 {
		return ErrInvalidTarget
	}
	if !a.Type.IsValid() {
		return ErrInvalidMovementType
	}
	if a.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// ToMovement 根据调整结果生成流水
func (a Adjustment) ToMovement(stockAfter int) *Movement {
	qty := a.Quantity
	if !a.Type.IsIncrease() {
		qty = -qty
	}
	return &Movement{
		ProductID:  a.ProductID,
		BranchID:   a.BranchID,
		Type:       a.Type,
		Quantity:   qty,
		StockAfter: stockAfter,
		OrderID:    a.OrderID,
		UserID:     a.UserID,
		Note:       a.Note,
		CreatedAt:  time.Now(),
	}
}
