// Package router 组装Gin引擎:全局中间件、系统路由和/api/v1业务路由
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/xiebiao/autoparts/internal/domain/user"
	"github.com/xiebiao/autoparts/internal/infrastructure/config"
	"github.com/xiebiao/autoparts/internal/interface/http/handler"
	"github.com/xiebiao/autoparts/internal/interface/http/middleware"
)

// Handlers 所有HTTP处理器
type Handlers struct {
	User      *handler.UserHandler
	Catalog   *handler.CatalogHandler
	Cart      *handler.CartHandler
	Order     *handler.OrderHandler
	Payment   *handler.PaymentHandler
	Inventory *handler.InventoryHandler
	Health    *handler.HealthHandler
}

// New 创建Gin引擎并注册路由
func New(cfg *config.Config, log *zap.Logger, h Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.RequestLogger(log, cfg.Server.SlowRequest))
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(promhttp.Handler()))
	}

	r.GET("/health", h.Health.Health)
	// 生产环境建议关闭或加访问控制
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerAPI(r.Group("/api/v1"), h, auth)
	return r
}

func registerAPI(v1 *gin.RouterGroup, h Handlers, auth *middleware.AuthMiddleware) {
	requireAuth := auth.RequireAuth()
	adminOnly := middleware.RequireRole(user.RoleAdmin)
	staffOnly := middleware.RequireRole(user.RoleAdmin, user.RoleBodeguero)

	// 用户
	users := v1.Group("/users")
	{
		users.POST("/register", auth.OptionalAuth(), h.User.Register)
		users.POST("/login", h.User.Login)
		users.POST("/refresh", h.User.Refresh)
		users.POST("/logout", requireAuth, h.User.Logout)
		users.GET("/me", requireAuth, h.User.GetProfile)
		users.PUT("/me", requireAuth, h.User.UpdateProfile)
	}

	// 商品目录(读公开,写仅管理员)
	v1.GET("/products", h.Catalog.ListProducts)
	v1.GET("/products/:id", h.Catalog.GetProduct)
	v1.POST("/products", requireAuth, adminOnly, h.Catalog.CreateProduct)
	v1.PUT("/products/:id/price", requireAuth, adminOnly, h.Catalog.UpdatePrice)
	v1.GET("/branches", h.Catalog.ListBranches)
	v1.POST("/branches", requireAuth, adminOnly, h.Catalog.CreateBranch)
	v1.GET("/categories", h.Catalog.ListCategories)
	v1.POST("/categories", requireAuth, adminOnly, h.Catalog.CreateCategory)

	// 购物车(允许匿名)
	carts := v1.Group("/carts")
	{
		carts.POST("", auth.OptionalAuth(), h.Cart.Create)
		carts.GET("/:id", h.Cart.Get)
		carts.POST("/:id/lines", h.Cart.AddLine)
		carts.PUT("/:id/lines/:product_id", h.Cart.UpdateLine)
		carts.DELETE("/:id/lines/:product_id", h.Cart.RemoveLine)
	}

	// 结账与订单
	v1.POST("/checkout", requireAuth, h.Order.Checkout)
	orders := v1.Group("/orders", requireAuth)
	{
		orders.GET("", h.Order.List)
		orders.GET("/:id", h.Order.Get)
		orders.GET("/by-no/:order_no", h.Order.GetByNo)
		orders.POST("/:id/cancel", h.Order.Cancel)
		orders.POST("/:id/deliver", adminOnly, h.Order.Deliver)
	}

	// 支付
	payments := v1.Group("/payments", requireAuth)
	{
		payments.POST("/confirm", h.Payment.Confirm)
		payments.POST("/fail", h.Payment.Fail)
		payments.POST("/transaction", h.Payment.CreateTransaction)
		payments.POST("/simulate", h.Payment.Simulate)
		payments.GET("/stats", adminOnly, h.Payment.Stats)
	}
	// WebPay回跳由浏览器发起,不带JWT
	v1.GET("/transbank/return", h.Payment.Return)
	v1.POST("/transbank/return", h.Payment.Return)

	// 库存
	inventory := v1.Group("/inventory", requireAuth, staffOnly)
	{
		inventory.GET("", h.Inventory.Records)
		inventory.GET("/movements", h.Inventory.Movements)
		inventory.POST("/adjust", h.Inventory.Adjust)
	}

	v1.GET("/audit", requireAuth, adminOnly, h.Inventory.Audit)
}
