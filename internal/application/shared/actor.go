package shared

import (
	"github.com/xiebiao/autoparts/internal/domain/user"
)

// Actor 当前操作人(从JWT中提取)
// UserID为0表示系统(支付网关回调、模拟支付)
type Actor struct {
	UserID uint
	Role   user.Role
}

// SystemActor 系统操作
var SystemActor = Actor{}

// IsStaff 管理员或仓管员
func (a Actor) IsStaff() bool {
	return a.Role.IsStaff()
}

// IsAdmin 管理员
func (a Actor) IsAdmin() bool {
	return a.Role == user.RoleAdmin
}

// IsSystem 系统操作
func (a Actor) IsSystem() bool {
	return a.UserID == 0
}
