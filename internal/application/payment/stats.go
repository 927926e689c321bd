package payment

import (
	"context"

	"github.com/xiebiao/autoparts/internal/domain/payment"
)

// StatusCountDTO 按状态汇总
type StatusCountDTO struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
	Amount int64  `json:"amount"`
}

// ProductSalesDTO 商品销量
type ProductSalesDTO struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
}

// StatsResponse 支付统计
type StatsResponse struct {
	Payments       []StatusCountDTO    `json:"payments"`
	ApprovedAmount int64               `json:"approved_amount"`
	Orders         []StatusCountDTO    `json:"orders"`
	TopProducts    []ProductSalesDTO   `json:"top_products"`
	Gateway        payment.GatewayInfo `json:"gateway"`
}

// StatsUseCase 支付统计(管理员)
type StatsUseCase struct {
	statsRepo payment.StatsRepository
	gateway   payment.Gateway
}

// NewStatsUseCase 创建用例
func NewStatsUseCase(statsRepo payment.StatsRepository, gateway payment.Gateway) *StatsUseCase {
	return &StatsUseCase{statsRepo: statsRepo, gateway: gateway}
}

// Execute 汇总支付、订单、热销商品和网关配置
func (uc *StatsUseCase) Execute(ctx context.Context) (*StatsResponse, error) {
	payments, err := uc.statsRepo.PaymentsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := uc.statsRepo.OrdersByStatus(ctx)
	if err != nil {
		return nil, err
	}
	top, err := uc.statsRepo.TopProducts(ctx, 5)
	if err != nil {
		return nil, err
	}

	resp := &StatsResponse{
		Payments:    toStatusCountDTOs(payments),
		Orders:      toStatusCountDTOs(orders),
		TopProducts: make([]ProductSalesDTO, 0, len(top)),
		Gateway:     uc.gateway.Info(),
	}
	for _, p := range payments {
		if p.Status == string(payment.StatusApproved) {
			resp.ApprovedAmount = p.Amount
		}
	}
	for _, t := range top {
		resp.TopProducts = append(resp.TopProducts, ProductSalesDTO{ProductID: t.ProductID, Name: t.Name, Quantity: t.Quantity})
	}
	return resp, nil
}

func toStatusCountDTOs(in []payment.StatusCount) []StatusCountDTO {
	out := make([]StatusCountDTO, 0, len(in))
	for _, s := range in {
		out = append(out, StatusCountDTO{Status: s.Status, Count: s.Count, Amount: s.Amount})
	}
	return out
}
