// Package shared 应用层公共端口:事务、事件发布、分页
package shared

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/autoparts/pkg/logger"
)

// Transactor 事务边界
// fn内所有仓储操作共用同一事务(事务通过ctx传递),fn返回error时回滚
// 生产实现是mysql.TxManager
type Transactor interface {
	Transaction(ctx context.Context, fn func(txCtx context.Context) error) error
}

// EventPublisher 领域事件发布
// 只能在事务提交后调用,发布失败不影响业务结果
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// NoopPublisher 未启用消息队列时使用
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// PublishQuietly 发布事件,失败只记录日志
func PublishQuietly(ctx context.Context, pub EventPublisher, routingKey string, payload interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, routingKey, payload); err != nil {
		logger.FromContext(ctx).Warn("publish event failed",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
	}
}

// NormalizePage 分页参数兜底:page从1开始,pageSize默认20,最大100
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// CacheInvalidator 商品详情缓存失效(库存变化后调用)
type CacheInvalidator interface {
	Invalidate(ctx context.Context, productIDs ...uint)
}

// NoopCache 未启用缓存时使用
type NoopCache struct{}

func (NoopCache) Invalidate(context.Context, ...uint) {}

// ProductCache 商品详情缓存(redis实现,key为product:{id})
// 读写失败只当作未命中,不影响查询
type ProductCache interface {
	CacheInvalidator
	Load(ctx context.Context, productID uint) ([]byte, bool)
	Store(ctx context.Context, productID uint, data []byte)
}

// NoopProductCache 未启用缓存时使用
type NoopProductCache struct{ NoopCache }

func (NoopProductCache) Load(context.Context, uint) ([]byte, bool) { return nil, false }

func (NoopProductCache) Store(context.Context, uint, []byte) {}
