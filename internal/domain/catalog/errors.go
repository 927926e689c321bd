package catalog

import (
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

// 商品目录领域错误定义
var (
	ErrProductNotFound  = apperrors.New(apperrors.ErrCodeProductNotFound, "商品不存在")
	ErrBranchNotFound   = apperrors.New(apperrors.ErrCodeBranchNotFound, "门店不存在")
	ErrCategoryNotFound = apperrors.New(apperrors.ErrCodeCategoryNotFound, "分类不存在")

	ErrSKUDuplicate      = apperrors.New(apperrors.ErrCodeDuplicateEntry, "SKU已存在")
	ErrBranchDuplicate   = apperrors.New(apperrors.ErrCodeDuplicateEntry, "门店名称已存在")
	ErrCategoryDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "分类名称已存在")

	ErrInvalidProductInfo  = apperrors.New(apperrors.ErrCodeInvalidParams, "商品名称和品牌不能为空")
	ErrInvalidPrice        = apperrors.New(apperrors.ErrCodeInvalidParams, "价格必须大于0")
	ErrInvalidStockMin     = apperrors.New(apperrors.ErrCodeInvalidParams, "安全库存不能为负数")
	ErrInvalidBranchInfo   = apperrors.New(apperrors.ErrCodeInvalidParams, "门店名称不能为空")
	ErrInvalidCategoryInfo = apperrors.New(apperrors.ErrCodeInvalidParams, "分类名称不能为空")
)
