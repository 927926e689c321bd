package inventory

import (
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

var (
	// ErrStockNotFound 商品在该门店没有库存记录
	ErrStockNotFound = apperrors.New(apperrors.ErrCodeStockNotFound, "商品在该门店无库存记录")

	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = apperrors.ErrInsufficientStock

	ErrInvalidQuantity     = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")
	ErrInvalidTarget       = apperrors.New(apperrors.ErrCodeInvalidParams, "商品和门店不能为空")
	ErrInvalidMovementType = apperrors.New(apperrors.ErrCodeInvalidParams, "非法的库存流水类型")
)
