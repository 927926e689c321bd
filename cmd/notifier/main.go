// autoparts-notifier 消费库存和支付事件,输出告警日志
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/xiebiao/autoparts/internal/infrastructure/config"
	"github.com/xiebiao/autoparts/internal/infrastructure/messaging"
	"github.com/xiebiao/autoparts/pkg/logger"
	"github.com/xiebiao/autoparts/pkg/metrics"
	"github.com/xiebiao/autoparts/pkg/mq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	zl, err := logger.New(logger.Config{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	if !cfg.MQ.Enabled {
		zl.Warn("mq.enabled=false, notifier has nothing to consume")
		return
	}
	if cfg.Metrics.Enabled {
		metrics.InitMetrics()
	}

	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType, cfg.MQ.Queue,
		messaging.NotifierRoutingKeys, zl)
	if err != nil {
		zl.Fatal("create consumer failed", zap.Error(err))
	}
	defer func() { _ = consumer.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifier := messaging.NewNotifier(zl)
	zl.Info("notifier started", zap.String("queue", cfg.MQ.Queue))
	if err := consumer.Consume(ctx, notifier.Handle); err != nil {
		zl.Error("consumer stopped", zap.Error(err))
	}
}
