package grpc

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/xiebiao/autoparts/internal/infrastructure/probe"
)

func TestHealthChecker(t *testing.T) {
	var redisDown atomic.Bool
	probes := []probe.Probe{
		{Name: "mysql", Ping: func(ctx context.Context) error { return nil }},
		{Name: "redis", Ping: func(ctx context.Context) error {
			if redisDown.Load() {
				return errors.New("connection refused")
			}
			return nil
		}},
	}
	checker := NewHealthChecker(zap.NewNop(), time.Hour, probes...)

	lis := bufconn.Listen(1 << 20)
	srv := checker.NewServer()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	client := healthpb.NewHealthClient(conn)

	status := func() healthpb.HealthCheckResponse_ServingStatus {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
		require.NoError(t, err)
		return resp.Status
	}

	// 探活之前
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status())

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, checker.Check(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status())

	redisDown.Store(true)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, checker.Check(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status())
}
