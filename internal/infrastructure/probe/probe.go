// Package probe 依赖探活,供HTTP /health和gRPC健康检查共用
package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Probe 单个依赖的探活
type Probe struct {
	Name string
	Ping func(ctx context.Context) error
}

// MySQL 数据库连接池探活
func MySQL(db *gorm.DB) Probe {
	return Probe{
		Name: "mysql",
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
}

// Redis 缓存探活
func Redis(client *redis.Client) Probe {
	return Probe{
		Name: "redis",
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	}
}

// Result 探活结果,Errors只包含失败的依赖
type Result struct {
	Healthy bool
	Status  map[string]string
	Errors  map[string]error
}

// Run 依次执行所有探活,每个探活最多等待timeout
func Run(ctx context.Context, timeout time.Duration, probes ...Probe) Result {
	res := Result{
		Healthy: true,
		Status:  make(map[string]string, len(probes)),
		Errors:  make(map[string]error),
	}
	for _, p := range probes {
		err := ping(ctx, timeout, p)
		if err != nil {
			res.Healthy = false
			res.Status[p.Name] = "down"
			res.Errors[p.Name] = err
			continue
		}
		res.Status[p.Name] = "up"
	}
	return res
}

func ping(ctx context.Context, timeout time.Duration, p Probe) (err error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("probe %s panic: %v", p.Name, r)
		}
	}()
	return p.Ping(ctx)
}
