package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appaudit "github.com/xiebiao/autoparts/internal/application/audit"
	appcart "github.com/xiebiao/autoparts/internal/application/cart"
	appcatalog "github.com/xiebiao/autoparts/internal/application/catalog"
	appinventory "github.com/xiebiao/autoparts/internal/application/inventory"
	apporder "github.com/xiebiao/autoparts/internal/application/order"
	apppayment "github.com/xiebiao/autoparts/internal/application/payment"
	appuser "github.com/xiebiao/autoparts/internal/application/user"
	"github.com/xiebiao/autoparts/internal/domain/inventory"
	"github.com/xiebiao/autoparts/internal/domain/user"
	"github.com/xiebiao/autoparts/internal/infrastructure/config"
	"github.com/xiebiao/autoparts/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/autoparts/internal/infrastructure/persistence/redis"
	grpcapi "github.com/xiebiao/autoparts/internal/interface/grpc"
	"github.com/xiebiao/autoparts/internal/interface/http/handler"
	"github.com/xiebiao/autoparts/internal/interface/http/middleware"
	"github.com/xiebiao/autoparts/internal/interface/http/router"
)

// App 组装完成的应用
type App struct {
	Engine *gin.Engine
	Health *grpcapi.HealthChecker
}

// newApp 手动依赖注入,与wire.go中的InitializeApp是同一张依赖图
//
// Repository ← Service ← UseCase ← Handler ← Router
func newApp(cfg *config.Config, log *zap.Logger) (*App, func(), error) {
	// 1. 基础设施
	db, err := mysql.NewDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	redisClient, err := redis.NewClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	publisher, closePublisher, err := provideEventPublisher(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		closePublisher()
		if err := redisClient.Close(); err != nil {
			log.Warn("close redis failed", zap.Error(err))
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	tx := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	productCache := provideProductCache(cfg, redisClient)
	gateway := provideGateway(cfg, log)
	jwtManager := provideJWTManager(cfg)

	// 2. 仓储
	userRepo := mysql.NewUserRepository(db)
	productRepo := mysql.NewProductRepository(db)
	branchRepo := mysql.NewBranchRepository(db)
	categoryRepo := mysql.NewCategoryRepository(db)
	inventoryRepo := mysql.NewInventoryRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	paymentRepo := mysql.NewPaymentRepository(db)
	statsRepo := mysql.NewStatsRepository(db)
	auditRepo := mysql.NewAuditRepository(db)

	// 3. 领域服务
	userService := user.NewService(userRepo)
	stockService := inventory.NewService(inventoryRepo)

	// 4. 应用层
	lowStock := appinventory.NewLowStockChecker(productRepo, inventoryRepo, publisher)
	confirm := apppayment.NewConfirmPaymentUseCase(orderRepo, cartRepo, paymentRepo, auditRepo,
		stockService, tx, productCache, lowStock, publisher)
	fail := apppayment.NewFailPaymentUseCase(orderRepo, paymentRepo, auditRepo, tx, publisher)
	updateLine := appcart.NewUpdateLineUseCase(cartRepo, inventoryRepo, tx)

	// 5. 接口层
	handlers := router.Handlers{
		User: handler.NewUserHandler(
			appuser.NewRegisterUseCase(userService),
			appuser.NewLoginUseCase(userService, jwtManager, sessionStore),
			appuser.NewLogoutUseCase(sessionStore, jwtManager),
			appuser.NewRefreshUseCase(userRepo, jwtManager, sessionStore),
			appuser.NewProfileUseCase(userRepo),
		),
		Catalog: provideCatalogHandler(cfg,
			appcatalog.NewCreateProductUseCase(productRepo, categoryRepo),
			appcatalog.NewUpdatePriceUseCase(productRepo, inventoryRepo, auditRepo, tx, productCache),
			appcatalog.NewGetProductUseCase(productRepo, branchRepo, inventoryRepo, productCache),
			appcatalog.NewListProductsUseCase(productRepo, inventoryRepo),
			appcatalog.NewBranchUseCase(branchRepo),
			appcatalog.NewCategoryUseCase(categoryRepo),
		),
		Cart: handler.NewCartHandler(
			appcart.NewCreateCartUseCase(cartRepo),
			appcart.NewGetCartUseCase(cartRepo, productRepo),
			appcart.NewAddLineUseCase(cartRepo, productRepo, branchRepo, inventoryRepo, tx),
			updateLine,
			appcart.NewRemoveLineUseCase(updateLine),
		),
		Order: handler.NewOrderHandler(
			apporder.NewCheckoutUseCase(cartRepo, orderRepo, paymentRepo, userRepo, auditRepo, tx, publisher),
			apporder.NewGetOrderUseCase(orderRepo, cartRepo, paymentRepo),
			apporder.NewListOrdersUseCase(orderRepo),
			apporder.NewDeliverOrderUseCase(orderRepo, auditRepo, tx),
			apporder.NewCancelOrderUseCase(orderRepo, cartRepo, paymentRepo, auditRepo,
				stockService, tx, productCache, publisher),
		),
		Payment: providePaymentHandler(cfg,
			confirm,
			fail,
			provideCreateTransactionUseCase(cfg, orderRepo, paymentRepo, gateway, tx),
			apppayment.NewGatewayConfirmUseCase(paymentRepo, orderRepo, gateway, confirm, fail),
			apppayment.NewSimulatePaymentUseCase(orderRepo, paymentRepo, gateway, confirm, fail),
			apppayment.NewStatsUseCase(statsRepo, gateway),
		),
		Inventory: handler.NewInventoryHandler(
			appinventory.NewAdjustStockUseCase(productRepo, branchRepo, auditRepo,
				stockService, tx, productCache, lowStock),
			appinventory.NewQueryStockUseCase(inventoryRepo),
			appaudit.NewListEntriesUseCase(auditRepo),
		),
	}
	probes := provideProbes(db, redisClient)
	handlers.Health = provideHealthHandler(probes)

	auth := middleware.NewAuthMiddleware(jwtManager, sessionStore)
	return &App{
		Engine: router.New(cfg, log, handlers, auth),
		Health: provideHealthChecker(log, probes),
	}, cleanup, nil
}
