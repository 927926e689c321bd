// Package dto HTTP层请求结构(带binding校验tag)
// 响应直接使用application层DTO
package dto

// RegisterRequest 注册
// role只有管理员调用时生效
type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required,min=2,max=100"`
	RUT      string `json:"rut" binding:"required,max=12"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=20"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
	Role     string `json:"role" binding:"omitempty,oneof=CLIENTE ADMIN BODEGUERO"`
}

// LoginRequest 登录
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest 刷新Token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest 修改资料
type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"omitempty,max=100"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
}
