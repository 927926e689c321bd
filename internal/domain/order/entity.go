package order

import (
	"time"
)

// Status 订单状态(闭合枚举,数据库以字符串存储)
type Status string

const (
	StatusPending   Status = "PENDING"   // 待支付
	StatusConfirmed Status = "CONFIRMED" // 已支付,库存已扣减
	StatusDelivered Status = "DELIVERED" // 已交付
	StatusCancelled Status = "CANCELLED" // 已取消
	StatusFailed    Status = "FAILED"    // 支付失败
)

// transitions 合法的状态流转(只能向前)
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusFailed, StatusCancelled},
	StatusConfirmed: {StatusDelivered, StatusCancelled},
	StatusFailed:    {StatusCancelled},
	StatusDelivered: {}, // 终态
	StatusCancelled: {}, // 终态
}

// ParseStatus 校验外部传入的状态字符串
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// Order 订单(聚合根)
// 设计说明:
// 1. 一个购物车最多生成一个订单(CartID唯一索引)
// 2. 订单明细即结算时的购物车明细(购物车结算后不可修改)
// 3. Total冗余存储结算时的金额,与支付金额一致
type Order struct {
	ID            uint
	OrderNo       string
	CartID        uint
	UserID        uint
	Address       string
	Status        Status
	PaymentMethod string
	Total         int64 // CLP
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOrder 创建待支付订单
func NewOrder(orderNo string, cartID, userID uint, address, paymentMethod string, total int64) *Order {
	now := time.Now()
	return &Order{
		OrderNo:       orderNo,
		CartID:        cartID,
		UserID:        userID,
		Address:       address,
		Status:        StatusPending,
		PaymentMethod: paymentMethod,
		Total:         total,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// CanTransitionTo 检查是否可以转换到目标状态
func (o *Order) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[o.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换
func (o *Order) TransitionTo(target Status) error {
	if !o.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// Confirm 支付成功
func (o *Order) Confirm() error {
	return o.TransitionTo(StatusConfirmed)
}

// Fail 支付失败
func (o *Order) Fail() error {
	return o.TransitionTo(StatusFailed)
}

// Deliver 交付
func (o *Order) Deliver() error {
	return o.TransitionTo(StatusDelivered)
}

// Cancel 取消
func (o *Order) Cancel() error {
	return o.TransitionTo(StatusCancelled)
}

// NeedsRestock 取消时是否需要退回库存(只有已扣减库存的CONFIRMED订单需要)
func (o *Order) NeedsRestock() bool {
	return o.Status == StatusConfirmed
}

// IsOwnedBy 检查订单是否属于指定用户
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}
