package user

import (
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

var (
	ErrInvalidRUT      = apperrors.New(apperrors.ErrCodeInvalidParams, "RUT格式或校验位不正确")
	ErrInvalidEmail    = apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")
	ErrInvalidFullName = apperrors.New(apperrors.ErrCodeInvalidParams, "姓名长度应为2-100个字符")
	ErrInvalidRole     = apperrors.New(apperrors.ErrCodeInvalidParams, "未知的用户角色")
)
