// Package metrics 提供基于Prometheus的指标收集
//
// 指标分四组：
//   - HTTP：请求总数、耗时、并发数（由HTTP中间件记录）
//   - 业务：结账、支付结果、库存流水、待对账告警、低库存告警
//   - 基础设施：熔断器、Saga、消息队列、支付网关调用
//
// 使用方式：
//
//	metrics.InitMetrics()
//	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
// 辅助函数对nil指标是空操作，单元测试不调用InitMetrics也不会panic。
//
// 命名规范：
//  1. Counter以`_total`结尾
//  2. Histogram以单位结尾（`_seconds`、`_clp`）
//  3. 不使用user_id、order_id等高基数标签
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "autoparts"

var (
	initOnce sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method、path（路由模板，非原始URL）、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 业务指标

	// OrdersCheckedOutTotal 结账生成的订单数
	OrdersCheckedOutTotal prometheus.Counter

	// CheckoutDuration 结账耗时
	CheckoutDuration prometheus.Histogram

	// OrderAmount 订单金额分布（CLP）
	OrderAmount prometheus.Histogram

	// PaymentsTotal 支付结果
	// 标签：result（approved/failed/already_processed）
	PaymentsTotal *prometheus.CounterVec

	// StockReconciliationTotal 已收款但库存不足、需要人工对账的支付数
	StockReconciliationTotal prometheus.Counter

	// StockMovementsTotal 库存流水
	// 标签：type（STOCK_IN/STOCK_OUT/SALE/RETURN）
	StockMovementsTotal *prometheus.CounterVec

	// LowStockAlertsTotal 库存跌破安全库存的次数
	LowStockAlertsTotal prometheus.Counter

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数
	// 标签：name、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// Saga指标

	// SagaExecutionsTotal Saga执行总数
	// 标签：saga、result（success/failure）
	SagaExecutionsTotal *prometheus.CounterVec

	// SagaExecutionDuration Saga执行耗时
	SagaExecutionDuration prometheus.Histogram

	// SagaCompensationsTotal Saga补偿执行总数
	SagaCompensationsTotal prometheus.Counter

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数
	// 标签：routing_key、result（success/failure）
	MessagesPublishedTotal *prometheus.CounterVec

	// MessagesConsumedTotal 消息消费总数
	// 标签：queue、result（success/failure）
	MessagesConsumedTotal *prometheus.CounterVec

	// MessageProcessingDuration 消息处理耗时
	MessageProcessingDuration prometheus.Histogram

	// 支付网关指标

	// GatewayRequestDuration 支付网关调用耗时
	// 标签：operation（create/commit）、result（success/failure）
	GatewayRequestDuration *prometheus.HistogramVec
)

// InitMetrics 初始化所有Prometheus指标
//
// 使用promauto注册到默认Registry，重复调用无副作用
func InitMetrics() {
	initOnce.Do(func() {
		// HTTP请求指标
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP请求总数",
			},
			[]string{"method", "path", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP请求耗时（秒）",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"method", "path"},
		)

		HTTPRequestsInProgress = promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_progress",
				Help:      "正在处理的HTTP请求数",
			},
		)

		// 业务指标
		OrdersCheckedOutTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orders_checked_out_total",
				Help:      "结账生成的订单总数",
			},
		)

		CheckoutDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "checkout_duration_seconds",
				Help:      "结账耗时（秒）",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		)

		OrderAmount = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "order_amount_clp",
				Help:      "订单金额分布（CLP）",
				Buckets:   []float64{10000, 50000, 100000, 250000, 500000, 1000000},
			},
		)

		PaymentsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payments_total",
				Help:      "支付处理结果",
			},
			[]string{"result"},
		)

		StockReconciliationTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stock_reconciliation_total",
				Help:      "已收款但库存不足的支付数",
			},
		)

		StockMovementsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stock_movements_total",
				Help:      "库存流水总数",
			},
			[]string{"type"},
		)

		LowStockAlertsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "low_stock_alerts_total",
				Help:      "库存跌破安全库存次数",
			},
		)

		// 熔断器指标
		CircuitBreakerState = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
			},
			[]string{"name"},
		)

		CircuitBreakerRequests = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_requests_total",
				Help:      "熔断器请求总数",
			},
			[]string{"name", "result"},
		)

		// Saga指标
		SagaExecutionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "saga_executions_total",
				Help:      "Saga执行总数",
			},
			[]string{"saga", "result"},
		)

		SagaExecutionDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "saga_execution_duration_seconds",
				Help:      "Saga执行耗时（秒）",
				Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30},
			},
		)

		SagaCompensationsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "saga_compensations_total",
				Help:      "Saga补偿执行总数",
			},
		)

		// 消息队列指标
		MessagesPublishedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_published_total",
				Help:      "消息发布总数",
			},
			[]string{"routing_key", "result"},
		)

		MessagesConsumedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_consumed_total",
				Help:      "消息消费总数",
			},
			[]string{"queue", "result"},
		)

		MessageProcessingDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "message_processing_duration_seconds",
				Help:      "消息处理耗时（秒）",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
			},
		)

		// 支付网关指标
		GatewayRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "gateway_request_duration_seconds",
				Help:      "支付网关调用耗时（秒）",
				Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"operation", "result"},
		)
	})
}

// IncCounter 递增Counter
func IncCounter(counter prometheus.Counter) {
	if counter == nil {
		return
	}
	counter.Inc()
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	if counter == nil {
		return
	}
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	if gauge == nil {
		return
	}
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	if gauge == nil {
		return
	}
	gauge.Dec()
}

// SetGauge 设置Gauge值
func SetGauge(gauge prometheus.Gauge, value float64) {
	if gauge == nil {
		return
	}
	gauge.Set(value)
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	if gauge == nil {
		return
	}
	gauge.With(labels).Set(value)
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	if histogram == nil {
		return
	}
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	if histogram == nil {
		return
	}
	histogram.With(labels).Observe(value)
}
