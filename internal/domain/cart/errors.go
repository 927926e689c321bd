package cart

import (
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

var (
	ErrCartNotFound = apperrors.New(apperrors.ErrCodeCartNotFound, "购物车不存在")
	ErrLineNotFound = apperrors.New(apperrors.ErrCodeNotFound, "购物车中没有该商品")
	ErrEmptyCart    = apperrors.New(apperrors.ErrCodeEmptyCart, "购物车为空")
	ErrCartClosed   = apperrors.New(apperrors.ErrCodeCartClosed, "购物车已结算，不能再修改")

	// ErrBranchMismatch 同一商品只能从一个门店出货
	ErrBranchMismatch = apperrors.New(apperrors.ErrCodeBusinessError, "该商品已从其他门店加入购物车")

	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")
)
