package inventory

import (
	"context"
)

// Service 库存领域服务
// 把"调整库存 + 记录流水"组合成一个操作,入库、出库、销售、退回都走这里
type Service interface {
	// Apply 执行一次库存调整并追加流水,返回流水(含调整后库存)
	// 必须在事务内调用,调整和流水要么都生效要么都不生效
	Apply(ctx context.Context, adj Adjustment) (*Movement, error)
}

type service struct {
	repo Repository
}

// NewService 创建库存服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Apply(ctx context.Context, adj Adjustment) (*Movement, error) {
	if err := adj.Validate(); err != nil {
		return nil, err
	}

	var (
		stockAfter int
		err        error
	)
	if adj.Type.IsIncrease() {
		stockAfter, err = s.repo.Increase(ctx, adj.ProductID, adj.BranchID, adj.Quantity)
	} else {
		stockAfter, err = s.repo.Decrease(ctx, adj.ProductID, adj.BranchID, adj.Quantity)
	}
	if err != nil {
		return nil, err
	}

	movement := adj.ToMovement(stockAfter)
	if err := s.repo.AppendMovement(ctx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}
