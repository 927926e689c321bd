// Package user 注册、登录、登出、刷新Token和个人资料用例
package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/user"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
	"github.com/xiebiao/autoparts/pkg/logger"
)

// RegisterUseCase 用户注册用例
// 顾客自助注册只能是CLIENTE,管理员可以直接创建ADMIN/BODEGUERO账号
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{
		userService: userService,
	}
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	// 1. 角色:非管理员指定角色一律拒绝
	var role user.Role
	if req.Role != "" {
		if !req.Actor.IsAdmin() {
			return nil, apperrors.ErrForbidden
		}
		parsed, err := user.ParseRole(req.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
	}

	// 2. 领域服务负责邮箱、RUT、密码强度校验和加密
	u, err := uc.userService.Register(ctx, user.RegisterInput{
		FullName: req.FullName,
		RUT:      req.RUT,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     role,
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("user registered",
		zap.Uint("user_id", u.ID),
		zap.String("role", string(u.Role)),
	)
	info := toUserInfo(u)
	return &info, nil
}

// =========================================
// 应用层DTO
// =========================================

// RegisterRequest 注册请求
type RegisterRequest struct {
	FullName string
	RUT      string
	Email    string
	Password string
	Phone    string
	Role     string // 只有管理员可以指定
	Actor    shared.Actor
}

// UserInfo 用户信息(不含密码)
type UserInfo struct {
	ID        uint   `json:"id"`
	FullName  string `json:"full_name"`
	RUT       string `json:"rut"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

func toUserInfo(u *user.User) UserInfo {
	return UserInfo{
		ID:        u.ID,
		FullName:  u.FullName,
		RUT:       u.RUT,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
