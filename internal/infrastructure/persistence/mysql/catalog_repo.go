package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/autoparts/internal/domain/catalog"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

// productRepository 商品仓储实现(MySQL)
type productRepository struct {
	conn
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) catalog.ProductRepository {
	return &productRepository{conn{db}}
}

// Create 创建商品,SKU重复返回ErrSKUDuplicate
func (r *productRepository) Create(ctx context.Context, p *catalog.Product) error {
	model := toProductModel(p)
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return catalog.ErrSKUDuplicate
		}
		return apperrors.Wrap(err, "创建商品失败")
	}
	p.ID = model.ID
	p.CreatedAt = model.CreatedAt
	p.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找商品
func (r *productRepository) FindByID(ctx context.Context, id uint) (*catalog.Product, error) {
	var model ProductModel
	if err := r.getDB(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "查询商品失败")
	}
	return toProductEntity(&model), nil
}

// FindByIDs 批量查询(购物车展示商品名、低库存检查)
func (r *productRepository) FindByIDs(ctx context.Context, ids []uint) ([]*catalog.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []ProductModel
	if err := r.getDB(ctx).Where("id IN ?", ids).Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "批量查询商品失败")
	}
	products := make([]*catalog.Product, len(models))
	for i := range models {
		products[i] = toProductEntity(&models[i])
	}
	return products, nil
}

// Update 更新商品信息
func (r *productRepository) Update(ctx context.Context, p *catalog.Product) error {
	model := toProductModel(p)
	if err := r.getDB(ctx).Save(model).Error; err != nil {
		if isDuplicateError(err) {
			return catalog.ErrSKUDuplicate
		}
		return apperrors.Wrapf(err, "更新商品%d失败", p.ID)
	}
	p.UpdatedAt = model.UpdatedAt
	return nil
}

// List 分页查询商品列表
// 关键字匹配名称、品牌、SKU
func (r *productRepository) List(ctx context.Context, filter catalog.ListFilter) ([]*catalog.Product, int64, error) {
	var (
		models []ProductModel
		total  int64
	)

	query := r.getDB(ctx).Model(&ProductModel{})
	if filter.Keyword != "" {
		keyword := "%" + filter.Keyword + "%"
		query = query.Where("name LIKE ? OR brand LIKE ? OR sku LIKE ?", keyword, keyword, keyword)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询商品总数失败")
	}
	if err := query.Order("name ASC").Scopes(paginate(filter.Page, filter.PageSize)).Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询商品列表失败")
	}

	products := make([]*catalog.Product, len(models))
	for i := range models {
		products[i] = toProductEntity(&models[i])
	}
	return products, total, nil
}

// branchRepository 门店仓储
type branchRepository struct {
	conn
}

// NewBranchRepository 创建门店仓储
func NewBranchRepository(db *gorm.DB) catalog.BranchRepository {
	return &branchRepository{conn{db}}
}

func (r *branchRepository) Create(ctx context.Context, b *catalog.Branch) error {
	model := &BranchModel{Name: b.Name, Address: b.Address, CreatedAt: b.CreatedAt}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return catalog.ErrBranchDuplicate
		}
		return apperrors.Wrap(err, "创建门店失败")
	}
	b.ID = model.ID
	return nil
}

func (r *branchRepository) FindByID(ctx context.Context, id uint) (*catalog.Branch, error) {
	var model BranchModel
	if err := r.getDB(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrBranchNotFound
		}
		return nil, apperrors.Wrap(err, "查询门店失败")
	}
	return &catalog.Branch{ID: model.ID, Name: model.Name, Address: model.Address, CreatedAt: model.CreatedAt}, nil
}

func (r *branchRepository) List(ctx context.Context) ([]*catalog.Branch, error) {
	var models []BranchModel
	if err := r.getDB(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询门店列表失败")
	}
	branches := make([]*catalog.Branch, len(models))
	for i, m := range models {
		branches[i] = &catalog.Branch{ID: m.ID, Name: m.Name, Address: m.Address, CreatedAt: m.CreatedAt}
	}
	return branches, nil
}

// categoryRepository 分类仓储
type categoryRepository struct {
	conn
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) catalog.CategoryRepository {
	return &categoryRepository{conn{db}}
}

func (r *categoryRepository) Create(ctx context.Context, c *catalog.Category) error {
	model := &CategoryModel{Name: c.Name}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return catalog.ErrCategoryDuplicate
		}
		return apperrors.Wrap(err, "创建分类失败")
	}
	c.ID = model.ID
	return nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uint) (*catalog.Category, error) {
	var model CategoryModel
	if err := r.getDB(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(err, "查询分类失败")
	}
	return &catalog.Category{ID: model.ID, Name: model.Name}, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*catalog.Category, error) {
	var models []CategoryModel
	if err := r.getDB(ctx).Order("name").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询分类列表失败")
	}
	categories := make([]*catalog.Category, len(models))
	for i, m := range models {
		categories[i] = &catalog.Category{ID: m.ID, Name: m.Name}
	}
	return categories, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toProductModel(p *catalog.Product) *ProductModel {
	return &ProductModel{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Brand:       p.Brand,
		CategoryID:  p.CategoryID,
		Price:       p.Price,
		StockMin:    p.StockMin,
		ImageURL:    p.ImageURL,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductEntity(model *ProductModel) *catalog.Product {
	return &catalog.Product{
		ID:          model.ID,
		SKU:         model.SKU,
		Name:        model.Name,
		Brand:       model.Brand,
		CategoryID:  model.CategoryID,
		Price:       model.Price,
		StockMin:    model.StockMin,
		ImageURL:    model.ImageURL,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
