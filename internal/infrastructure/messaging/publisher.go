// Package messaging 领域事件的发布与通知消费
package messaging

import (
	"go.uber.org/zap"

	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/infrastructure/config"
	"github.com/xiebiao/autoparts/pkg/mq"
)

// NewEventPublisher mq.enabled=false时返回空实现
// 返回的cleanup在进程退出时调用
func NewEventPublisher(cfg config.MQConfig, log *zap.Logger) (shared.EventPublisher, func(), error) {
	if !cfg.Enabled {
		log.Info("message queue disabled, events are dropped")
		return shared.NoopPublisher{}, func() {}, nil
	}

	publisher, err := mq.NewPublisher(cfg.URL, cfg.Exchange, cfg.ExchangeType, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := publisher.Close(); err != nil {
			log.Warn("close publisher failed", zap.Error(err))
		}
	}
	return publisher, cleanup, nil
}
