package order

import (
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")

	// ErrInvalidStatusTransition 非法的状态转换
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidOrderStatus, "订单状态不允许此操作")

	// ErrInvalidStatus 未知的订单状态
	ErrInvalidStatus = apperrors.New(apperrors.ErrCodeInvalidParams, "未知的订单状态")

	// ErrCartAlreadyOrdered 购物车已生成过订单
	ErrCartAlreadyOrdered = apperrors.New(apperrors.ErrCodeCartClosed, "购物车已生成订单")

	// ErrInvalidAddress 配送地址不能为空
	ErrInvalidAddress = apperrors.New(apperrors.ErrCodeInvalidParams, "配送地址不能为空")
)
