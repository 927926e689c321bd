package inventory

import (
	"context"
)

// Repository 库存仓储接口
// 所有修改都是单条原子SQL,调用方负责把多条修改放进同一事务(ctx携带tx)
type Repository interface {
	// Increase 原子增加库存,记录不存在时插入
	// INSERT ... ON DUPLICATE KEY UPDATE stock = stock + ?
	// 返回调整后的库存
	Increase(ctx context.Context, productID, branchID uint, delta int) (int, error)

	// Decrease 条件扣减库存
	// UPDATE ... SET stock = stock - ? WHERE product_id = ? AND branch_id = ? AND stock >= ?
	// 影响行数为0时区分ErrStockNotFound和ErrInsufficientStock
	// 返回调整后的库存
	Decrease(ctx context.Context, productID, branchID uint, delta int) (int, error)

	// FindRecord 不存在返回ErrStockNotFound
	FindRecord(ctx context.Context, productID, branchID uint) (*Record, error)

	ListRecords(ctx context.Context, filter RecordFilter) ([]*Record, error)

	// TotalStocks 按商品汇总所有门店库存,没有记录的商品不出现在结果中
	TotalStocks(ctx context.Context, productIDs []uint) (map[uint]int, error)

	// AppendMovement 追加库存流水
	AppendMovement(ctx context.Context, movement *Movement) error

	ListMovements(ctx context.Context, filter MovementFilter) ([]*Movement, int64, error)
}

// RecordFilter 库存记录查询条件,零值表示不限
type RecordFilter struct {
	ProductID uint
	BranchID  uint
}

// MovementFilter 库存流水查询条件
type MovementFilter struct {
	ProductID uint
	BranchID  uint
	OrderID   uint
	Page      int
	PageSize  int
}
