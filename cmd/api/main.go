// autoparts-api 汽车配件电商后端
//
// @title           Autoparts API
// @version         1.0
// @description     汽车配件电商:商品目录、门店库存、购物车、结账、WebPay支付
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/xiebiao/autoparts/docs"
	"github.com/xiebiao/autoparts/internal/infrastructure/config"
	"github.com/xiebiao/autoparts/pkg/logger"
	"github.com/xiebiao/autoparts/pkg/metrics"
	"github.com/xiebiao/autoparts/pkg/tracing"
)

// main 启动流程:
// 配置 → 日志 → 追踪/指标 → 依赖注入 → HTTP + gRPC健康检查 → 优雅关闭
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 日志
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

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	// 3. 追踪和指标
	shutdownTracer, err := tracing.InitTracer(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return err
	}
	if cfg.Metrics.Enabled {
		metrics.InitMetrics()
	}

	// 4. 依赖注入
	app, cleanup, err := newApp(cfg, zl)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 5. gRPC健康检查
	go app.Health.Run(ctx)
	grpcServer := app.Health.NewServer()
	if cfg.Server.GRPCPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
		if err != nil {
			return fmt.Errorf("监听gRPC端口失败: %w", err)
		}
		go func() {
			zl.Info("grpc health server started", zap.Int("port", cfg.Server.GRPCPort))
			if err := grpcServer.Serve(lis); err != nil {
				zl.Error("grpc server stopped", zap.Error(err))
			}
		}()
	}

	// 6. HTTP服务
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		zl.Info("http server started",
			zap.String("addr", srv.Addr),
			zap.String("mode", cfg.Server.Mode),
			zap.Bool("transbank_simulation", cfg.Transbank.Simulation),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 7. 优雅关闭
	select {
	case <-ctx.Done():
		zl.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("HTTP服务启动失败: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	app.Health.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("http server forced to shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	if err := shutdownTracer(shutdownCtx); err != nil {
		zl.Warn("tracer shutdown failed", zap.Error(err))
	}

	zl.Info("server stopped")
	return nil
}
