package order

import (
	"context"
	"errors"
	"strings"

	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/cart"
	"github.com/xiebiao/autoparts/internal/domain/order"
	"github.com/xiebiao/autoparts/internal/domain/payment"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

// GetOrderUseCase 查询订单详情
type GetOrderUseCase struct {
	orderRepo   order.Repository
	cartRepo    cart.Repository
	paymentRepo payment.Repository
}

// NewGetOrderUseCase 创建用例
func NewGetOrderUseCase(orderRepo order.Repository, cartRepo cart.Repository, paymentRepo payment.Repository) *GetOrderUseCase {
	return &GetOrderUseCase{orderRepo: orderRepo, cartRepo: cartRepo, paymentRepo: paymentRepo}
}

// Execute 订单所有者或员工可查看
func (uc *GetOrderUseCase) Execute(ctx context.Context, orderID uint, actor shared.Actor) (*OrderDetailDTO, error) {
	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return uc.detail(ctx, o, actor)
}

// ExecuteByNo 按订单号查询(客服场景,顾客手里只有订单号)
func (uc *GetOrderUseCase) ExecuteByNo(ctx context.Context, orderNo string, actor shared.Actor) (*OrderDetailDTO, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, order.ErrOrderNotFound
	}
	o, err := uc.orderRepo.FindByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	return uc.detail(ctx, o, actor)
}

func (uc *GetOrderUseCase) detail(ctx context.Context, o *order.Order, actor shared.Actor) (*OrderDetailDTO, error) {
	if !actor.IsStaff() && !o.IsOwnedBy(actor.UserID) {
		return nil, apperrors.ErrForbidden
	}

	c, err := uc.cartRepo.FindByID(ctx, o.CartID)
	if err != nil {
		return nil, err
	}

	p, err := uc.paymentRepo.FindByOrderID(ctx, o.ID)
	if err != nil && !errors.Is(err, payment.ErrPaymentNotFound) {
		return nil, err
	}

	return &OrderDetailDTO{
		OrderDTO: toOrderDTO(o),
		Lines:    toLineDTOs(c.Lines),
		Payment:  toPaymentDTO(p),
	}, nil
}

// ListOrdersUseCase 订单列表
type ListOrdersUseCase struct {
	orderRepo order.Repository
}

// NewListOrdersUseCase 创建用例
func NewListOrdersUseCase(orderRepo order.Repository) *ListOrdersUseCase {
	return &ListOrdersUseCase{orderRepo: orderRepo}
}

// Execute 顾客只能看到自己的订单,员工可按用户筛选
func (uc *ListOrdersUseCase) Execute(ctx context.Context, req ListOrdersRequest) (*ListOrdersResponse, error) {
	page, pageSize := shared.NormalizePage(req.Page, req.PageSize)
	filter := order.ListFilter{UserID: req.Actor.UserID, Page: page, PageSize: pageSize}
	if req.Actor.IsStaff() {
		filter.UserID = req.UserID
	}
	if req.Status != "" {
		st, err := order.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}

	orders, total, err := uc.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		items = append(items, toOrderDTO(o))
	}
	return &ListOrdersResponse{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}
