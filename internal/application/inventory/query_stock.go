package inventory

import (
	"context"
	"time"

	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/inventory"
)

// RecordDTO 门店库存
type RecordDTO struct {
	ProductID uint      `json:"product_id"`
	BranchID  uint      `json:"branch_id"`
	Stock     int       `json:"stock"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListMovementsRequest 流水查询
type ListMovementsRequest struct {
	ProductID uint
	BranchID  uint
	OrderID   uint
	Page      int
	PageSize  int
}

// ListMovementsResponse 流水分页
type ListMovementsResponse struct {
	Items    []MovementDTO `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// QueryStockUseCase 库存查询
type QueryStockUseCase struct {
	inventoryRepo inventory.Repository
}

// NewQueryStockUseCase 创建用例
func NewQueryStockUseCase(inventoryRepo inventory.Repository) *QueryStockUseCase {
	return &QueryStockUseCase{inventoryRepo: inventoryRepo}
}

// ListRecords 按商品/门店筛选库存记录,零值表示不限
func (uc *QueryStockUseCase) ListRecords(ctx context.Context, productID, branchID uint) ([]RecordDTO, error) {
	records, err := uc.inventoryRepo.ListRecords(ctx, inventory.RecordFilter{ProductID: productID, BranchID: branchID})
	if err != nil {
		return nil, err
	}
	out := make([]RecordDTO, 0, len(records))
	for _, r := range records {
		out = append(out, RecordDTO{ProductID: r.ProductID, BranchID: r.BranchID, Stock: r.Stock, UpdatedAt: r.UpdatedAt})
	}
	return out, nil
}

// ListMovements 库存流水分页
func (uc *QueryStockUseCase) ListMovements(ctx context.Context, req ListMovementsRequest) (*ListMovementsResponse, error) {
	page, pageSize := shared.NormalizePage(req.Page, req.PageSize)
	movements, total, err := uc.inventoryRepo.ListMovements(ctx, inventory.MovementFilter{
		ProductID: req.ProductID,
		BranchID:  req.BranchID,
		OrderID:   req.OrderID,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		return nil, err
	}
	items := make([]MovementDTO, 0, len(movements))
	for _, m := range movements {
		items = append(items, toMovementDTO(m))
	}
	return &ListMovementsResponse{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}
