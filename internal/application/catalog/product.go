package catalog

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/catalog"
	"github.com/xiebiao/autoparts/internal/domain/inventory"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
	"github.com/xiebiao/autoparts/pkg/logger"
)

// CreateProductUseCase 新增商品(管理员)
// 新商品没有任何门店库存,入库走库存调整用例
type CreateProductUseCase struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
}

// NewCreateProductUseCase 创建用例
func NewCreateProductUseCase(productRepo catalog.ProductRepository, categoryRepo catalog.CategoryRepository) *CreateProductUseCase {
	return &CreateProductUseCase{productRepo: productRepo, categoryRepo: categoryRepo}
}

// Execute 执行新增
func (uc *CreateProductUseCase) Execute(ctx context.Context, req CreateProductRequest) (*ProductDTO, error) {
	if !req.Actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	// 1. 业务校验(名称/品牌必填、价格>=1、安全库存>=0)
	p, err := catalog.NewProduct(req.SKU, req.Name, req.Brand, req.CategoryID,
		req.Price, req.StockMin, req.ImageURL, req.Description)
	if err != nil {
		return nil, err
	}

	if p.SKU == "" {
		p.SKU = "SKU-" + strings.ToUpper(uuid.NewString()[:8])
	}

	// 2. 分类必须存在
	if req.CategoryID != 0 {
		if _, err := uc.categoryRepo.FindByID(ctx, req.CategoryID); err != nil {
			return nil, err
		}
	}

	// 3. 持久化(SKU唯一索引兜底)
	if err := uc.productRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("product created",
		zap.Uint("product_id", p.ID),
		zap.String("sku", p.SKU),
	)
	dto := toProductDTO(p, 0)
	return &dto, nil
}

// GetProductUseCase 商品详情
// 详情按product:{id}缓存,库存变化时由出入库/确认支付/取消订单失效
type GetProductUseCase struct {
	productRepo   catalog.ProductRepository
	branchRepo    catalog.BranchRepository
	inventoryRepo inventory.Repository
	cache         shared.ProductCache
}

// NewGetProductUseCase 创建用例
func NewGetProductUseCase(
	productRepo catalog.ProductRepository,
	branchRepo catalog.BranchRepository,
	inventoryRepo inventory.Repository,
	cache shared.ProductCache,
) *GetProductUseCase {
	return &GetProductUseCase{
		productRepo:   productRepo,
		branchRepo:    branchRepo,
		inventoryRepo: inventoryRepo,
		cache:         cache,
	}
}

// Execute 查询详情
func (uc *GetProductUseCase) Execute(ctx context.Context, productID uint) (*ProductDetailDTO, error) {
	// 1. 先查缓存
	if data, ok := uc.cache.Load(ctx, productID); ok {
		var cached ProductDetailDTO
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	// 2. 商品 + 各门店库存
	p, err := uc.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	records, err := uc.inventoryRepo.ListRecords(ctx, inventory.RecordFilter{ProductID: productID})
	if err != nil {
		return nil, err
	}
	branches, err := uc.branchRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(branches))
	for _, b := range branches {
		names[b.ID] = b.Name
	}

	total := 0
	stocks := make([]BranchStockDTO, 0, len(records))
	for _, r := range records {
		total += r.Stock
		stocks = append(stocks, BranchStockDTO{BranchID: r.BranchID, BranchName: names[r.BranchID], Stock: r.Stock})
	}
	detail := &ProductDetailDTO{
		ProductDTO:  toProductDTO(p, total),
		Description: p.Description,
		Stocks:      stocks,
	}

	// 3. 回写缓存
	if data, err := json.Marshal(detail); err == nil {
		uc.cache.Store(ctx, productID, data)
	}
	return detail, nil
}

// ListProductsUseCase 商品列表(含总库存和低库存标记)
type ListProductsUseCase struct {
	productRepo   catalog.ProductRepository
	inventoryRepo inventory.Repository
}

// NewListProductsUseCase 创建用例
func NewListProductsUseCase(productRepo catalog.ProductRepository, inventoryRepo inventory.Repository) *ListProductsUseCase {
	return &ListProductsUseCase{productRepo: productRepo, inventoryRepo: inventoryRepo}
}

// Execute 分页查询
func (uc *ListProductsUseCase) Execute(ctx context.Context, req ListProductsRequest) (*ListProductsResponse, error) {
	// 1. 分页兜底
	req.Page, req.PageSize = shared.NormalizePage(req.Page, req.PageSize)

	// 2. 查询商品
	products, total, err := uc.productRepo.List(ctx, catalog.ListFilter{
		Keyword:    req.Keyword,
		CategoryID: req.CategoryID,
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
	if err != nil {
		return nil, err
	}

	// 3. 一次查出本页商品的总库存
	ids := make([]uint, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	totals := map[uint]int{}
	if len(ids) > 0 {
		totals, err = uc.inventoryRepo.TotalStocks(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	list := make([]ProductDTO, len(products))
	for i, p := range products {
		list[i] = toProductDTO(p, totals[p.ID])
	}

	// 4. 总页数
	totalPages := int(total) / req.PageSize
	if int(total)%req.PageSize != 0 {
		totalPages++
	}

	return &ListProductsResponse{
		List:       list,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}, nil
}
