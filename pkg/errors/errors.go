package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code用于客户端判断错误类型（业务码，与HTTP状态码分离）
// 2. Message是用户友好的提示信息
// 3. Err是内部错误，仅记录到日志，不返回给客户端
type AppError struct {
	Code    int    `json:"code"`    // 业务错误码
	Message string `json:"message"` // 用户友好的错误提示
	Err     error  `json:"-"`       // 内部错误（不序列化）
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较
// 预定义错误是指针，WithErr会复制出新实例，所以按Code判断
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// WithErr 复制错误并附带内部原因（预定义错误不能被修改）
func (e *AppError) WithErr(err error) *AppError {
	return &AppError{Code: e.Code, Message: e.Message, Err: err}
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
// 统一归为存储失败：调用方只需要知道"需要重试"，细节进日志
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeDatabaseError,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeDatabaseError,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 4xxxx: 客户端错误（参数错误、业务规则校验失败）
// - 5xxxx: 服务端错误（数据库异常、对账异常、支付网关故障）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal            = 50000 // 内部错误
	ErrCodeDatabaseError       = 50001 // 数据库错误（事务已回滚，可重试）
	ErrCodeRedisError          = 50002 // Redis错误
	ErrCodeStockReconciliation = 50003 // 确认支付时库存不足，需人工对账

	// 外部依赖错误（50200-50299）
	ErrCodeGatewayError       = 50201 // 支付网关调用失败
	ErrCodeGatewayUnavailable = 50202 // 支付网关熔断中

	// 认证授权错误（40100-40199）
	ErrCodeUnauthorized    = 40100 // 未登录
	ErrCodeInvalidToken    = 40101 // Token无效
	ErrCodeTokenExpired    = 40102 // Token过期
	ErrCodeInvalidPassword = 40103 // 密码错误
	ErrCodeForbidden       = 40104 // 无权限

	// 资源错误（40400-40499）
	ErrCodeNotFound         = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound     = 40401 // 用户不存在
	ErrCodeProductNotFound  = 40402 // 商品不存在
	ErrCodeOrderNotFound    = 40403 // 订单不存在
	ErrCodeCartNotFound     = 40404 // 购物车不存在
	ErrCodeBranchNotFound   = 40405 // 门店不存在
	ErrCodeStockNotFound    = 40406 // 商品在该门店无库存记录
	ErrCodePaymentNotFound  = 40407 // 支付记录不存在
	ErrCodeCategoryNotFound = 40408 // 分类不存在

	// 业务规则错误（40000-40099）
	ErrCodeBusinessError        = 40000 // 业务错误(通用)
	ErrCodeInsufficientStock    = 40001 // 库存不足
	ErrCodeInvalidOrderStatus   = 40002 // 订单状态非法
	ErrCodeEmailDuplicate       = 40003 // 邮箱已存在
	ErrCodeRUTDuplicate         = 40004 // RUT已存在
	ErrCodeWeakPassword         = 40005 // 密码强度不足
	ErrCodeEmptyCart            = 40006 // 购物车为空
	ErrCodeCartClosed           = 40007 // 购物车已结算
	ErrCodeInvalidPaymentStatus = 40008 // 支付状态非法
	ErrCodeDuplicateEntry       = 40009 // 重复记录(通用)

	// 参数错误（40900-40999）
	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数绑定失败
)

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	// 系统错误
	ErrInternal            = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError       = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError          = New(ErrCodeRedisError, "缓存服务错误")
	ErrStockReconciliation = New(ErrCodeStockReconciliation, "库存不足以完成已支付订单，已标记人工对账")
	ErrGatewayError        = New(ErrCodeGatewayError, "支付网关调用失败")
	ErrGatewayUnavailable  = New(ErrCodeGatewayUnavailable, "支付网关暂不可用，请稍后重试")

	// 认证授权
	ErrUnauthorized    = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken    = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired    = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidPassword = New(ErrCodeInvalidPassword, "密码错误")
	ErrForbidden       = New(ErrCodeForbidden, "无权限访问")

	// 资源不存在
	ErrUserNotFound = New(ErrCodeUserNotFound, "用户不存在")

	// 业务规则
	ErrInsufficientStock = New(ErrCodeInsufficientStock, "库存不足")
	ErrEmailDuplicate    = New(ErrCodeEmailDuplicate, "邮箱已被注册")
	ErrRUTDuplicate      = New(ErrCodeRUTDuplicate, "RUT已被注册")
	ErrWeakPassword      = New(ErrCodeWeakPassword, "密码强度不足（需8-20位，包含字母和数字）")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{Code: ErrCodeInternal, Message: "系统内部错误", Err: err}
}

// IsServerError 5xxxx为服务端错误
func IsServerError(code int) bool {
	return code >= 50000
}

// HTTPStatus 业务码 → HTTP状态码
func HTTPStatus(code int) int {
	switch {
	case code == 0:
		return http.StatusOK
	case code == ErrCodeForbidden:
		return http.StatusForbidden
	case code >= 40100 && code < 40200:
		return http.StatusUnauthorized
	case code >= 40400 && code < 40500:
		return http.StatusNotFound
	case code == ErrCodeEmailDuplicate, code == ErrCodeRUTDuplicate,
		code == ErrCodeDuplicateEntry, code == ErrCodeCartClosed,
		code == ErrCodeInvalidOrderStatus, code == ErrCodeInvalidPaymentStatus:
		return http.StatusConflict
	case code >= 40000 && code < 50000:
		return http.StatusBadRequest
	case code >= 50200 && code < 50300:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
