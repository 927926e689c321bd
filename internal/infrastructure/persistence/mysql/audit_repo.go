package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/autoparts/internal/domain/audit"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

// auditRepository 审计日志仓储,只有INSERT和SELECT
type auditRepository struct {
	conn
}

// NewAuditRepository 创建审计日志仓储
func NewAuditRepository(db *gorm.DB) audit.Repository {
	return &auditRepository{conn{db}}
}

func (r *auditRepository) Append(ctx context.Context, e *audit.Entry) error {
	model := &AuditModel{UserID: e.UserID, Action: e.Action, CreatedAt: e.CreatedAt}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "写入审计日志失败")
	}
	e.ID = model.ID
	return nil
}

func (r *auditRepository) List(ctx context.Context, userID uint, page, pageSize int) ([]*audit.Entry, int64, error) {
	query := r.getDB(ctx).Model(&AuditModel{})
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询审计日志总数失败")
	}

	var models []AuditModel
	if err := query.Order("created_at DESC, id DESC").Scopes(paginate(page, pageSize)).Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询审计日志失败")
	}
	entries := make([]*audit.Entry, len(models))
	for i, m := range models {
		entries[i] = &audit.Entry{ID: m.ID, UserID: m.UserID, Action: m.Action, CreatedAt: m.CreatedAt}
	}
	return entries, total, nil
}
