//go:build wireinject
// +build wireinject

// Wire依赖注入配置
//
// 生成:wire gen ./cmd/api,生成的wire_gen.go中的InitializeApp与app.go的newApp等价。
// Provider Set定义在providers.go。

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/xiebiao/autoparts/internal/infrastructure/config"
)

// InitializeApp 组装整个应用,cleanup关闭MQ连接
func InitializeApp(cfg *config.Config, log *zap.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
	)
	return nil, nil, nil
}
