// Package grpc 标准grpc.health.v1健康检查服务
//
// 后台定时探活MySQL和Redis,全部正常为SERVING,否则NOT_SERVING:
//
//	grpcurl -plaintext localhost:9090 grpc.health.v1.Health/Check
package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/xiebiao/autoparts/internal/infrastructure/probe"
)

// ServiceName 对外的服务名,空串表示整体状态
const ServiceName = "autoparts.api"

// HealthChecker 探活结果同步到health.Server
type HealthChecker struct {
	srv      *health.Server
	probes   []probe.Probe
	interval time.Duration
	timeout  time.Duration
	log      *zap.Logger

	last healthpb.HealthCheckResponse_ServingStatus
}

// NewHealthChecker 创建健康检查,interval<=0时默认10s
func NewHealthChecker(log *zap.Logger, interval time.Duration, probes ...probe.Probe) *HealthChecker {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	srv := health.NewServer()
	// 第一次探活之前不对外宣称可用
	srv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	srv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &HealthChecker{
		srv:      srv,
		probes:   probes,
		interval: interval,
		timeout:  2 * time.Second,
		log:      log,
		last:     healthpb.HealthCheckResponse_NOT_SERVING,
	}
}

// NewServer 创建gRPC服务并注册健康检查和反射
func (h *HealthChecker) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	s := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(s, h.srv)
	reflection.Register(s)
	return s
}

// Run 立即探活一次,之后按interval循环,ctx取消时返回
func (h *HealthChecker) Run(ctx context.Context) {
	h.Check(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}

// Check 探活一次并更新状态
func (h *HealthChecker) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	res := probe.Run(ctx, h.timeout, h.probes...)

	status := healthpb.HealthCheckResponse_SERVING
	if !res.Healthy {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	if status != h.last {
		fields := []zap.Field{zap.String("status", status.String())}
		for name, err := range res.Errors {
			fields = append(fields, zap.NamedError(name, err))
		}
		if status == healthpb.HealthCheckResponse_SERVING {
			h.log.Info("health status changed", fields...)
		} else {
			h.log.Warn("health status changed", fields...)
		}
		h.last = status
	}

	h.srv.SetServingStatus("", status)
	h.srv.SetServingStatus(ServiceName, status)
	return status
}

// Shutdown 所有服务置为NOT_SERVING,关闭前调用
func (h *HealthChecker) Shutdown() {
	h.srv.Shutdown()
}
