package audit

import (
	"context"
	"fmt"
	"time"
)

// Entry 审计日志(只追加,不修改不删除)
// UserID为0表示系统操作(如支付网关回调)
type Entry struct {
	ID        uint
	UserID    uint
	Action    string
	CreatedAt time.Time
}

// NewEntry 创建审计日志
func NewEntry(userID uint, format string, args ...interface{}) *Entry {
	return &Entry{
		UserID:    userID,
		Action:    fmt.Sprintf(format, args...),
		CreatedAt: time.Now(),
	}
}

// Repository 审计日志仓储
type Repository interface {
	// Append 追加一条记录,在业务事务内调用时随事务一起提交或回滚
	Append(ctx context.Context, entry *Entry) error

	// List 按时间倒序分页,UserID为0表示全部
	List(ctx context.Context, userID uint, page, pageSize int) ([]*Entry, int64, error)
}
