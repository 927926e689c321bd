package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/autoparts/pkg/logger"
)

// ProductCache 商品详情缓存(Cache-Aside)
// key: product:{id},值是详情DTO的JSON
// Redis故障只降级为直接查库,不影响业务
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProductCache 创建商品缓存,ttl<=0时使用10分钟
func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ProductCache{client: client, ttl: ttl}
}

func productKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

// Load 读缓存,未命中或出错返回false
func (c *ProductCache) Load(ctx context.Context, productID uint) ([]byte, bool) {
	data, err := c.client.Get(ctx, productKey(productID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.FromContext(ctx).Warn("product cache get failed",
				zap.Uint("product_id", productID), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

// Store 写缓存
func (c *ProductCache) Store(ctx context.Context, productID uint, data []byte) {
	if err := c.client.Set(ctx, productKey(productID), data, c.ttl).Err(); err != nil {
		logger.FromContext(ctx).Warn("product cache set failed",
			zap.Uint("product_id", productID), zap.Error(err))
	}
}

// Invalidate 库存变化后删除缓存
// 在事务提交后调用,删除失败时等TTL过期
func (c *ProductCache) Invalidate(ctx context.Context, productIDs ...uint) {
	if len(productIDs) == 0 {
		return
	}
	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = productKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.FromContext(ctx).Warn("product cache invalidate failed",
			zap.Uints("product_ids", productIDs), zap.Error(err))
	}
}
