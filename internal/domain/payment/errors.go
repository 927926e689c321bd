package payment

import (
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

var (
	ErrPaymentNotFound         = apperrors.New(apperrors.ErrCodePaymentNotFound, "支付记录不存在")
	ErrDuplicatePayment        = apperrors.New(apperrors.ErrCodeDuplicateEntry, "该订单已有支付记录")
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidPaymentStatus, "支付状态不允许此操作")
	ErrTransactionInProgress   = apperrors.New(apperrors.ErrCodeInvalidPaymentStatus, "支付交易正在发起,请稍后重试")
	ErrInvalidMethod           = apperrors.New(apperrors.ErrCodeInvalidParams, "不支持的支付方式")
	ErrInvalidScenario         = apperrors.New(apperrors.ErrCodeInvalidParams, "未知的模拟场景")
	ErrMissingExternalRef      = apperrors.New(apperrors.ErrCodeInvalidParams, "手动确认必须提供外部交易号")
	ErrTokenMismatch           = apperrors.New(apperrors.ErrCodeInvalidParams, "Token与订单不匹配")
	ErrSimulationDisabled      = apperrors.New(apperrors.ErrCodeForbidden, "当前环境未开启模拟支付")
)
