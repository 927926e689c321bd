package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/autoparts/internal/domain/inventory"
	"github.com/xiebiao/autoparts/internal/domain/payment"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

// paymentRepository 支付仓储实现(MySQL)
type paymentRepository struct {
	conn
}

// NewPaymentRepository 创建支付仓储
func NewPaymentRepository(db *gorm.DB) payment.Repository {
	return &paymentRepository{conn{db}}
}

// Create order_id唯一,重复返回ErrDuplicatePayment
func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	model := toPaymentModel(p)
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return payment.ErrDuplicatePayment
		}
		return apperrors.Wrap(err, "创建支付记录失败")
	}
	p.ID = model.ID
	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*payment.Payment, error) {
	return r.first(r.getDB(ctx), "id = ?", id)
}

func (r *paymentRepository) FindByOrderID(ctx context.Context, orderID uint) (*payment.Payment, error) {
	return r.first(r.getDB(ctx), "order_id = ?", orderID)
}

// FindByOrderIDForUpdate 调用方必须已持有订单行锁
func (r *paymentRepository) FindByOrderIDForUpdate(ctx context.Context, orderID uint) (*payment.Payment, error) {
	return r.first(r.getDB(ctx).Clauses(forUpdate), "order_id = ?", orderID)
}

func (r *paymentRepository) FindByToken(ctx context.Context, token string) (*payment.Payment, error) {
	return r.first(r.getDB(ctx), "token = ?", token)
}

func (r *paymentRepository) first(db *gorm.DB, query string, arg interface{}) (*payment.Payment, error) {
	var model PaymentModel
	if err := db.Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, apperrors.Wrap(err, "查询支付记录失败")
	}
	return toPaymentEntity(&model), nil
}

// Update 更新可变字段
func (r *paymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	result := r.getDB(ctx).Model(&PaymentModel{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"status":               string(p.Status),
		"token":                p.Token,
		"payment_url":          p.PaymentURL,
		"external_ref":         p.ExternalRef,
		"failure_reason":       p.FailureReason,
		"needs_reconciliation": p.NeedsReconciliation,
		"processed_at":         p.ProcessedAt,
		"updated_at":           p.UpdatedAt,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新支付记录失败")
	}
	if result.RowsAffected == 0 {
		return payment.ErrPaymentNotFound
	}
	return nil
}

func toPaymentModel(p *payment.Payment) *PaymentModel {
	return &PaymentModel{
		ID:                  p.ID,
		PaymentNo:           p.PaymentNo,
		OrderID:             p.OrderID,
		Amount:              p.Amount,
		Method:              string(p.Method),
		Status:              string(p.Status),
		Token:               p.Token,
		PaymentURL:          p.PaymentURL,
		ExternalRef:         p.ExternalRef,
		FailureReason:       p.FailureReason,
		NeedsReconciliation: p.NeedsReconciliation,
		ProcessedAt:         p.ProcessedAt,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func toPaymentEntity(model *PaymentModel) *payment.Payment {
	return &payment.Payment{
		ID:                  model.ID,
		PaymentNo:           model.PaymentNo,
		OrderID:             model.OrderID,
		Amount:              model.Amount,
		Method:              payment.Method(model.Method),
		Status:              payment.Status(model.Status),
		Token:               model.Token,
		PaymentURL:          model.PaymentURL,
		ExternalRef:         model.ExternalRef,
		FailureReason:       model.FailureReason,
		NeedsReconciliation: model.NeedsReconciliation,
		ProcessedAt:         model.ProcessedAt,
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
	}
}

// =========================================
// 统计(只读聚合查询)
// =========================================

type statsRepository struct {
	conn
}

// NewStatsRepository 创建统计仓储
func NewStatsRepository(db *gorm.DB) payment.StatsRepository {
	return &statsRepository{conn{db}}
}

func (r *statsRepository) PaymentsByStatus(ctx context.Context) ([]payment.StatusCount, error) {
	var rows []payment.StatusCount
	err := r.getDB(ctx).Model(&PaymentModel{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Group("status").
		Order("status").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "统计支付失败")
	}
	return rows, nil
}

func (r *statsRepository) OrdersByStatus(ctx context.Context) ([]payment.StatusCount, error) {
	var rows []payment.StatusCount
	err := r.getDB(ctx).Model(&OrderModel{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total), 0) AS amount").
		Group("status").
		Order("status").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "统计订单失败")
	}
	return rows, nil
}

// TopProducts SALE流水数量为负,取反后汇总
func (r *statsRepository) TopProducts(ctx context.Context, limit int) ([]payment.ProductSales, error) {
	var rows []payment.ProductSales
	err := r.getDB(ctx).Table("inventory_movements AS m").
		Select("m.product_id AS product_id, p.name AS name, -SUM(m.quantity) AS quantity").
		Joins("JOIN products AS p ON p.id = m.product_id").
		Where("m.type = ?", string(inventory.MovementSale)).
		Group("m.product_id, p.name").
		Order("quantity DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "统计热销商品失败")
	}
	return rows, nil
}
