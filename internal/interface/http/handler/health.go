package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xiebiao/autoparts/internal/infrastructure/probe"
	"github.com/xiebiao/autoparts/pkg/logger"
	"github.com/xiebiao/autoparts/pkg/response"
)

// HealthHandler 健康检查
type HealthHandler struct {
	probes  []probe.Probe
	timeout time.Duration
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(probes ...probe.Probe) *HealthHandler {
	return &HealthHandler{probes: probes, timeout: 2 * time.Second}
}

// Health 依赖探活
// @Summary      健康检查
// @Description  检查MySQL和Redis连接,任一失败返回503
// @Tags         系统
// @Produce      json
// @Success      200 {object} response.Response
// @Failure      503 {object} response.Response
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	res := probe.Run(c.Request.Context(), h.timeout, h.probes...)
	if res.Healthy {
		response.Success(c, gin.H{"status": "healthy", "checks": res.Status})
		return
	}

	for name, err := range res.Errors {
		logger.FromContext(c.Request.Context()).Warn("health check failed", zap.String("dependency", name), zap.Error(err))
	}
	c.JSON(http.StatusServiceUnavailable, response.Response{
		Code:    http.StatusServiceUnavailable,
		Message: "unhealthy",
		Data:    gin.H{"status": "unhealthy", "checks": res.Status},
	})
}
