package catalog

import (
	"context"

	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/catalog"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

// BranchUseCase 门店管理
type BranchUseCase struct {
	branchRepo catalog.BranchRepository
}

// NewBranchUseCase 创建用例
func NewBranchUseCase(branchRepo catalog.BranchRepository) *BranchUseCase {
	return &BranchUseCase{branchRepo: branchRepo}
}

// Create 新增门店(管理员)
func (uc *BranchUseCase) Create(ctx context.Context, name, address string, actor shared.Actor) (*BranchDTO, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	b, err := catalog.NewBranch(name, address)
	if err != nil {
		return nil, err
	}
	if err := uc.branchRepo.Create(ctx, b); err != nil {
		return nil, err
	}
	dto := toBranchDTO(b)
	return &dto, nil
}

// List 全部门店
func (uc *BranchUseCase) List(ctx context.Context) ([]BranchDTO, error) {
	branches, err := uc.branchRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]BranchDTO, len(branches))
	for i, b := range branches {
		out[i] = toBranchDTO(b)
	}
	return out, nil
}

// CategoryUseCase 分类管理
type CategoryUseCase struct {
	categoryRepo catalog.CategoryRepository
}

// NewCategoryUseCase 创建用例
func NewCategoryUseCase(categoryRepo catalog.CategoryRepository) *CategoryUseCase {
	return &CategoryUseCase{categoryRepo: categoryRepo}
}

// Create 新增分类(管理员)
func (uc *CategoryUseCase) Create(ctx context.Context, name string, actor shared.Actor) (*CategoryDTO, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	c, err := catalog.NewCategory(name)
	if err != nil {
		return nil, err
	}
	if err := uc.categoryRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return &CategoryDTO{ID: c.ID, Name: c.Name}, nil
}

func (uc *CategoryUseCase) List(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := uc.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryDTO, len(categories))
	for i, c := range categories {
		out[i] = CategoryDTO{ID: c.ID, Name: c.Name}
	}
	return out, nil
}
