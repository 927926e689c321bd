// Package audit 审计日志查询
package audit

import (
	"context"
	"time"

	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/audit"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

// ListEntriesRequest 查询条件,UserID为0表示全部
type ListEntriesRequest struct {
	UserID   uint
	Page     int
	PageSize int
	Actor    shared.Actor
}

// EntryDTO 审计记录
type EntryDTO struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

// ListEntriesResponse 分页结果
type ListEntriesResponse struct {
	Items    []EntryDTO `json:"items"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

// ListEntriesUseCase 审计日志分页(管理员)
type ListEntriesUseCase struct {
	auditRepo audit.Repository
}

// NewListEntriesUseCase 创建用例
func NewListEntriesUseCase(auditRepo audit.Repository) *ListEntriesUseCase {
	return &ListEntriesUseCase{auditRepo: auditRepo}
}

// Execute 按时间倒序分页
func (uc *ListEntriesUseCase) Execute(ctx context.Context, req ListEntriesRequest) (*ListEntriesResponse, error) {
	if !req.Actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	page, pageSize := shared.NormalizePage(req.Page, req.PageSize)

	entries, total, err := uc.auditRepo.List(ctx, req.UserID, page, pageSize)
	if err != nil {
		return nil, err
	}
	items := make([]EntryDTO, len(entries))
	for i, e := range entries {
		items[i] = EntryDTO{ID: e.ID, UserID: e.UserID, Action: e.Action, CreatedAt: e.CreatedAt}
	}
	return &ListEntriesResponse{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}
