package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/autoparts/internal/domain/cart"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

// cartRepository 购物车仓储实现(MySQL)
// Cart和Line是聚合关系,查询时一起加载
type cartRepository struct {
	conn
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepository{conn{db}}
}

// Create 创建空购物车
func (r *cartRepository) Create(ctx context.Context, c *cart.Cart) error {
	model := &CartModel{
		UserID:    c.UserID,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建购物车失败")
	}
	c.ID = model.ID
	return nil
}

// FindByID 查询购物车及明细
// Preload会执行两条SQL,避免N+1
func (r *cartRepository) FindByID(ctx context.Context, id uint) (*cart.Cart, error) {
	var model CartModel
	err := r.getDB(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cart.ErrCartNotFound
		}
		return nil, apperrors.Wrap(err, "查询购物车失败")
	}
	return toCartEntity(&model), nil
}

// FindByIDForUpdate 锁定购物车行后再读明细
// 明细的增删改都先拿购物车行锁,所以明细本身不用再加锁
func (r *cartRepository) FindByIDForUpdate(ctx context.Context, id uint) (*cart.Cart, error) {
	db := r.getDB(ctx)

	var model CartModel
	if err := db.Clauses(forUpdate).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cart.ErrCartNotFound
		}
		return nil, apperrors.Wrap(err, "锁定购物车失败")
	}
	if err := db.Where("cart_id = ?", id).Order("id").Find(&model.Lines).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询购物车明细失败")
	}
	return toCartEntity(&model), nil
}

// UpdateStatus 更新购物车状态
func (r *cartRepository) UpdateStatus(ctx context.Context, c *cart.Cart) error {
	result := r.getDB(ctx).Model(&CartModel{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"status":     string(c.Status),
		"updated_at": c.UpdatedAt,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新购物车状态失败")
	}
	if result.RowsAffected == 0 {
		return cart.ErrCartNotFound
	}
	return nil
}

// CreateLine 新增明细
func (r *cartRepository) CreateLine(ctx context.Context, line *cart.Line) error {
	model := toCartLineModel(line)
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "新增购物车明细失败")
	}
	line.ID = model.ID
	return nil
}

// UpdateLine 更新数量和小计(单价是加购时的快照,不更新)
func (r *cartRepository) UpdateLine(ctx context.Context, line *cart.Line) error {
	result := r.getDB(ctx).Model(&CartLineModel{}).
		Where("cart_id = ? AND product_id = ?", line.CartID, line.ProductID).
		Updates(map[string]interface{}{
			"quantity":   line.Quantity,
			"line_total": line.LineTotal,
			"updated_at": line.UpdatedAt,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新购物车明细失败")
	}
	if result.RowsAffected == 0 {
		return cart.ErrLineNotFound
	}
	return nil
}

// DeleteLine 删除明细
func (r *cartRepository) DeleteLine(ctx context.Context, cartID, productID uint) error {
	result := r.getDB(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&CartLineModel{})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除购物车明细失败")
	}
	if result.RowsAffected == 0 {
		return cart.ErrLineNotFound
	}
	return nil
}

func toCartLineModel(l *cart.Line) *CartLineModel {
	return &CartLineModel{
		ID:        l.ID,
		CartID:    l.CartID,
		ProductID: l.ProductID,
		BranchID:  l.BranchID,
		Quantity:  l.Quantity,
		UnitPrice: l.UnitPrice,
		LineTotal: l.LineTotal,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func toCartEntity(model *CartModel) *cart.Cart {
	lines := make([]cart.Line, len(model.Lines))
	for i, l := range model.Lines {
		lines[i] = cart.Line{
			ID:        l.ID,
			CartID:    l.CartID,
			ProductID: l.ProductID,
			BranchID:  l.BranchID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
			CreatedAt: l.CreatedAt,
			UpdatedAt: l.UpdatedAt,
		}
	}
	return &cart.Cart{
		ID:        model.ID,
		UserID:    model.UserID,
		Status:    cart.Status(model.Status),
		Lines:     lines,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
