package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/autoparts/internal/domain/inventory"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

// inventoryRepository 门店库存仓储(MySQL)
// 库存修改都是单条原子SQL,不做应用层读改写:
//   - 增加:INSERT ... ON DUPLICATE KEY UPDATE stock = stock + ?
//   - 扣减:UPDATE ... SET stock = stock - ? WHERE ... AND stock >= ?
//
// 两个并发扣减在行锁上串行,后到的看到的是扣减后的库存,库存永远不会为负
type inventoryRepository struct {
	conn
}

// NewInventoryRepository 创建库存仓储
func NewInventoryRepository(db *gorm.DB) inventory.Repository {
	return &inventoryRepository{conn{db}}
}

// Increase 原子增加库存,记录不存在时插入
func (r *inventoryRepository) Increase(ctx context.Context, productID, branchID uint, delta int) (int, error) {
	if delta <= 0 {
		return 0, inventory.ErrInvalidQuantity
	}
	db := r.getDB(ctx)
	now := time.Now()

	err := db.Clauses(clause.OnConflict{
		DoUpdates: clause.Assignments(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", delta),
			"updated_at": now,
		}),
	}).Create(&InventoryModel{
		ProductID: productID,
		BranchID:  branchID,
		Stock:     delta,
		UpdatedAt: now,
	}).Error
	if err != nil {
		return 0, apperrors.Wrapf(err, "增加库存失败(商品%d 门店%d)", productID, branchID)
	}
	return r.currentStock(db, productID, branchID)
}

// Decrease 条件扣减库存
// 影响行数为0时再查一次,区分"没有库存记录"和"库存不足"
func (r *inventoryRepository) Decrease(ctx context.Context, productID, branchID uint, delta int) (int, error) {
	if delta <= 0 {
		return 0, inventory.ErrInvalidQuantity
	}
	db := r.getDB(ctx)

	result := db.Model(&InventoryModel{}).
		Where("product_id = ? AND branch_id = ?", productID, branchID).
		Where("stock >= ?", delta).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", delta),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, apperrors.Wrapf(result.Error, "扣减库存失败(商品%d 门店%d)", productID, branchID)
	}

	if result.RowsAffected == 0 {
		var model InventoryModel
		err := db.Where("product_id = ? AND branch_id = ?", productID, branchID).First(&model).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, inventory.ErrStockNotFound
			}
			return 0, apperrors.Wrap(err, "查询库存失败")
		}
		return 0, inventory.ErrInsufficientStock.WithErr(fmt.Errorf(
			"product=%d branch=%d available=%d requested=%d", productID, branchID, model.Stock, delta))
	}
	return r.currentStock(db, productID, branchID)
}

// currentStock 读取调整后的库存(锁定读,事务内看到自己的修改)
func (r *inventoryRepository) currentStock(db *gorm.DB, productID, branchID uint) (int, error) {
	var model InventoryModel
	err := db.Clauses(forUpdate).
		Where("product_id = ? AND branch_id = ?", productID, branchID).
		First(&model).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "查询库存失败")
	}
	return model.Stock, nil
}

// FindRecord 查询门店库存
func (r *inventoryRepository) FindRecord(ctx context.Context, productID, branchID uint) (*inventory.Record, error) {
	var model InventoryModel
	err := r.getDB(ctx).Where("product_id = ? AND branch_id = ?", productID, branchID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrStockNotFound
		}
		return nil, apperrors.Wrap(err, "查询库存失败")
	}
	return toRecordEntity(&model), nil
}

// ListRecords 按商品/门店筛选
func (r *inventoryRepository) ListRecords(ctx context.Context, filter inventory.RecordFilter) ([]*inventory.Record, error) {
	query := r.getDB(ctx).Model(&InventoryModel{})
	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.BranchID != 0 {
		query = query.Where("branch_id = ?", filter.BranchID)
	}

	var models []InventoryModel
	if err := query.Order("product_id, branch_id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询库存列表失败")
	}
	records := make([]*inventory.Record, len(models))
	for i := range models {
		records[i] = toRecordEntity(&models[i])
	}
	return records, nil
}

// TotalStocks 按商品汇总所有门店库存
func (r *inventoryRepository) TotalStocks(ctx context.Context, productIDs []uint) (map[uint]int, error) {
	totals := make(map[uint]int, len(productIDs))
	if len(productIDs) == 0 {
		return totals, nil
	}

	var rows []struct {
		ProductID uint
		Total     int
	}
	err := r.getDB(ctx).Model(&InventoryModel{}).
		Select("product_id, SUM(stock) AS total").
		Where("product_id IN ?", productIDs).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "汇总库存失败")
	}
	for _, row := range rows {
		totals[row.ProductID] = row.Total
	}
	return totals, nil
}

// AppendMovement 追加库存流水
func (r *inventoryRepository) AppendMovement(ctx context.Context, m *inventory.Movement) error {
	model := &MovementModel{
		ProductID:  m.ProductID,
		BranchID:   m.BranchID,
		Type:       string(m.Type),
		Quantity:   m.Quantity,
		StockAfter: m.StockAfter,
		OrderID:    m.OrderID,
		UserID:     m.UserID,
		Note:       m.Note,
		CreatedAt:  m.CreatedAt,
	}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "记录库存流水失败")
	}
	m.ID = model.ID
	return nil
}

// ListMovements 流水分页,按时间倒序
func (r *inventoryRepository) ListMovements(ctx context.Context, filter inventory.MovementFilter) ([]*inventory.Movement, int64, error) {
	query := r.getDB(ctx).Model(&MovementModel{})
	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.BranchID != 0 {
		query = query.Where("branch_id = ?", filter.BranchID)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询库存流水总数失败")
	}

	var models []MovementModel
	if err := query.Order("id DESC").Scopes(paginate(filter.Page, filter.PageSize)).Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询库存流水失败")
	}
	movements := make([]*inventory.Movement, len(models))
	for i, m := range models {
		movements[i] = &inventory.Movement{
			ID:         m.ID,
			ProductID:  m.ProductID,
			BranchID:   m.BranchID,
			Type:       inventory.MovementType(m.Type),
			Quantity:   m.Quantity,
			StockAfter: m.StockAfter,
			OrderID:    m.OrderID,
			UserID:     m.UserID,
			Note:       m.Note,
			CreatedAt:  m.CreatedAt,
		}
	}
	return movements, total, nil
}

func toRecordEntity(model *InventoryModel) *inventory.Record {
	return &inventory.Record{
		ID:        model.ID,
		ProductID: model.ProductID,
		BranchID:  model.BranchID,
		Stock:     model.Stock,
		UpdatedAt: model.UpdatedAt,
	}
}
