package mysql

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/xiebiao/autoparts/internal/domain/order"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

// orderRepository 订单仓储实现(MySQL)
// 订单明细就是结算时的购物车明细(cart_id唯一),不再单独建表
type orderRepository struct {
	conn
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{conn{db}}
}

// Create 创建订单
// 同一购物车并发结算时,cart_id唯一索引只放行一个
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) && strings.Contains(strings.ToLower(duplicateKey(err)), "cart") {
			return order.ErrCartAlreadyOrdered
		}
		return apperrors.Wrap(err, "创建订单失败")
	}

	o.ID = model.ID
	return nil
}

// FindByID 根据ID查找订单
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	return r.first(r.getDB(ctx), "id = ?", id)
}

// FindByIDForUpdate SELECT ... FOR UPDATE
// 锁顺序固定为先订单后支付
func (r *orderRepository) FindByIDForUpdate(ctx context.Context, id uint) (*order.Order, error) {
	return r.first(r.getDB(ctx).Clauses(forUpdate), "id = ?", id)
}

// FindByOrderNo 根据订单号查找订单
func (r *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	return r.first(r.getDB(ctx), "order_no = ?", orderNo)
}

func (r *orderRepository) first(db *gorm.DB, query string, arg interface{}) (*order.Order, error) {
	var model OrderModel
	if err := db.Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}
	return toOrderEntity(&model), nil
}

// UpdateStatus 只更新Status和UpdatedAt
func (r *orderRepository) UpdateStatus(ctx context.Context, o *order.Order) error {
	result := r.getDB(ctx).Model(&OrderModel{}).Where("id = ?", o.ID).Updates(map[string]interface{}{
		"status":     string(o.Status),
		"updated_at": o.UpdatedAt,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单失败")
	}
	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// List 分页查询订单,按创建时间倒序
func (r *orderRepository) List(ctx context.Context, filter order.ListFilter) ([]*order.Order, int64, error) {
	var (
		models []OrderModel
		total  int64
	)

	query := r.getDB(ctx).Model(&OrderModel{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单总数失败")
	}
	err := query.Order("created_at DESC, id DESC").
		Scopes(paginate(filter.Page, filter.PageSize)).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}
	return orders, total, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toOrderModel(o *order.Order) *OrderModel {
	return &OrderModel{
		ID:            o.ID,
		OrderNo:       o.OrderNo,
		CartID:        o.CartID,
		UserID:        o.UserID,
		Address:       o.Address,
		Status:        string(o.Status),
		PaymentMethod: o.PaymentMethod,
		Total:         o.Total,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func toOrderEntity(model *OrderModel) *order.Order {
	return &order.Order{
		ID:            model.ID,
		OrderNo:       model.OrderNo,
		CartID:        model.CartID,
		UserID:        model.UserID,
		Address:       model.Address,
		Status:        order.Status(model.Status),
		PaymentMethod: model.PaymentMethod,
		Total:         model.Total,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}
