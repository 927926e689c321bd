package user

import (
	"strings"
	"time"
)

// Role 用户角色
type Role string

const (
	RoleCliente   Role = "CLIENTE"   // 顾客
	RoleAdmin     Role = "ADMIN"     // 管理员
	RoleBodeguero Role = "BODEGUERO" // 仓管员(可出入库)
)

// ParseRole 校验角色,空串默认CLIENTE
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RoleCliente, nil
	}
	switch r := Role(strings.ToUpper(s)); r {
	case RoleCliente, RoleAdmin, RoleBodeguero:
		return r, nil
	}
	return "", ErrInvalidRole
}

// IsStaff 管理员和仓管员可查看他人订单
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleBodeguero
}

// User 用户实体（聚合根）
// DDD设计说明：
// 1. 密码已加密存储（bcrypt），不提供任何取明文的方法
// 2. RUT以规范格式存储（无点，带连字符，如 12345678-5）
// 3. 领域实体不依赖GORM tag（Repository实现时会处理映射）
type User struct {
	ID        uint
	FullName  string
	RUT       string
	Email     string
	Password  string // bcrypt哈希值
	Phone     string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(fullName, rut, email, hashedPassword, phone string, role Role) *User {
	now := time.Now()
	return &User{
		FullName:  fullName,
		RUT:       rut,
		Email:     email,
		Password:  hashedPassword,
		Phone:     phone,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpdateProfile 更新资料（领域行为），空值表示不修改
func (u *User) UpdateProfile(fullName, phone string) {
	if fullName != "" {
		u.FullName = fullName
	}
	if phone != "" {
		u.Phone = phone
	}
	u.UpdatedAt = time.Now()
}
