package user

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/xiebiao/autoparts/internal/domain/user"
)

// ProfileUseCase 个人资料
type ProfileUseCase struct {
	userRepo user.Repository
}

// NewProfileUseCase 创建用例
func NewProfileUseCase(userRepo user.Repository) *ProfileUseCase {
	return &ProfileUseCase{userRepo: userRepo}
}

// Get 查询资料
func (uc *ProfileUseCase) Get(ctx context.Context, userID uint) (*UserInfo, error) {
	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(u)
	return &info, nil
}

// UpdateProfileRequest 资料修改,空值表示不修改
type UpdateProfileRequest struct {
	FullName string
	Phone    string
}

// Update 修改姓名/电话(邮箱、RUT、角色不可自助修改)
func (uc *ProfileUseCase) Update(ctx context.Context, userID uint, req UpdateProfileRequest) (*UserInfo, error) {
	fullName := strings.TrimSpace(req.FullName)
	if fullName != "" {
		if n := utf8.RuneCountInString(fullName); n < 2 || n > 100 {
			return nil, user.ErrInvalidFullName
		}
	}

	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.UpdateProfile(fullName, strings.TrimSpace(req.Phone))
	if err := uc.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}
	info := toUserInfo(u)
	return &info, nil
}
