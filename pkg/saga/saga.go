// Package saga 顺序执行一组带补偿的步骤
//
// 任一步骤失败时，按执行的逆序调用已完成步骤的补偿操作。
// 用于跨越外部系统、无法放进同一个数据库事务的流程，例如：
//
//	预占支付（PENDING→PROCESSING） → 调用支付网关建单 → 保存Token
//
// 网关建单失败时，补偿把支付状态退回PENDING，用户可以重试。
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/autoparts/pkg/metrics"
)

// Step Saga步骤
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error // 可为nil
}

// Saga 一次性的步骤编排器，不可并发复用
type Saga struct {
	name     string
	steps    []Step
	executed []Step
	timeout  time.Duration
	logger   *zap.Logger
}

// NewSaga 创建Saga，timeout<=0表示不限时
func NewSaga(name string, timeout time.Duration, logger *zap.Logger) *Saga {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Saga{
		name:    name,
		timeout: timeout,
		logger:  logger,
	}
}

// AddStep 追加步骤
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, Step{Name: name, Action: action, Compensate: compensate})
	return s
}

// Execute 依次执行所有步骤
//
// 返回的错误包装了失败步骤的原始错误（可用errors.Is/As判断），
// 补偿失败时一并Join进返回值
func (s *Saga) Execute(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		result := "success"
		if err != nil {
			result = "failure"
		}
		metrics.IncCounterVec(metrics.SagaExecutionsTotal, map[string]string{"saga": s.name, "result": result})
		metrics.ObserveHistogram(metrics.SagaExecutionDuration, time.Since(start).Seconds())
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Join(fmt.Errorf("saga[%s]超时: %w", s.name, ctxErr), s.compensate(ctx))
		}

		if step.Action != nil {
			if actionErr := step.Action(ctx); actionErr != nil {
				s.logger.Warn("saga step failed, compensating",
					zap.String("saga", s.name),
					zap.String("step", step.Name),
					zap.Error(actionErr),
				)
				return errors.Join(fmt.Errorf("步骤[%d:%s]执行失败: %w", i, step.Name, actionErr), s.compensate(ctx))
			}
		}
		s.executed = append(s.executed, step)
	}

	return nil
}

// compensate 逆序补偿已执行步骤
//
// 补偿使用脱离原ctx取消信号的Context，原流程超时后补偿仍要完成
func (s *Saga) compensate(parent context.Context) error {
	if len(s.executed) == 0 {
		return nil
	}
	metrics.IncCounter(metrics.SagaCompensationsTotal)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), 10*time.Second)
	defer cancel()

	var errs []error
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			s.logger.Error("saga compensation failed",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("补偿[%s]失败: %w", step.Name, err))
		}
	}
	s.executed = nil
	return errors.Join(errs...)
}
