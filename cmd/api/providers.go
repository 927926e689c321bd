package main

import (
	"time"

	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appaudit "github.com/xiebiao/autoparts/internal/application/audit"
	appcart "github.com/xiebiao/autoparts/internal/application/cart"
	appcatalog "github.com/xiebiao/autoparts/internal/application/catalog"
	appinventory "github.com/xiebiao/autoparts/internal/application/inventory"
	apporder "github.com/xiebiao/autoparts/internal/application/order"
	apppayment "github.com/xiebiao/autoparts/internal/application/payment"
	"github.com/xiebiao/autoparts/internal/application/shared"
	appuser "github.com/xiebiao/autoparts/internal/application/user"
	"github.com/xiebiao/autoparts/internal/domain/inventory"
	"github.com/xiebiao/autoparts/internal/domain/order"
	"github.com/xiebiao/autoparts/internal/domain/payment"
	"github.com/xiebiao/autoparts/internal/domain/user"
	"github.com/xiebiao/autoparts/internal/infrastructure/config"
	"github.com/xiebiao/autoparts/internal/infrastructure/messaging"
	"github.com/xiebiao/autoparts/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/autoparts/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/autoparts/internal/infrastructure/probe"
	"github.com/xiebiao/autoparts/internal/infrastructure/transbank"
	grpcapi "github.com/xiebiao/autoparts/internal/interface/grpc"
	"github.com/xiebiao/autoparts/internal/interface/http/handler"
	"github.com/xiebiao/autoparts/internal/interface/http/middleware"
	"github.com/xiebiao/autoparts/internal/interface/http/router"
	"github.com/xiebiao/autoparts/pkg/jwt"
)

// ========================================
// Provider Sets
// ========================================
// wire.go和app.go共用这些Provider

var infrastructureSet = wire.NewSet(
	mysql.NewDB,
	redis.NewClient,
	mysql.NewTxManager,
	wire.Bind(new(shared.Transactor), new(*mysql.TxManager)),
	redis.NewSessionStore,
	wire.Bind(new(appuser.SessionStore), new(*redis.SessionStore)),
	wire.Bind(new(middleware.TokenBlacklist), new(*redis.SessionStore)),
	provideProductCache,
	wire.Bind(new(shared.ProductCache), new(*redis.ProductCache)),
	wire.Bind(new(shared.CacheInvalidator), new(*redis.ProductCache)),
	provideEventPublisher,
	provideGateway,
	wire.Bind(new(payment.Gateway), new(*transbank.Client)),
	provideJWTManager,
)

var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewProductRepository,
	mysql.NewBranchRepository,
	mysql.NewCategoryRepository,
	mysql.NewInventoryRepository,
	mysql.NewCartRepository,
	mysql.NewOrderRepository,
	mysql.NewPaymentRepository,
	mysql.NewStatsRepository,
	mysql.NewAuditRepository,
)

var domainSet = wire.NewSet(
	user.NewService,
	inventory.NewService,
)

var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewRefreshUseCase,
	appuser.NewProfileUseCase,
	appcatalog.NewCreateProductUseCase,
	appcatalog.NewUpdatePriceUseCase,
	appcatalog.NewGetProductUseCase,
	appcatalog.NewListProductsUseCase,
	appcatalog.NewBranchUseCase,
	appcatalog.NewCategoryUseCase,
	appinventory.NewLowStockChecker,
	appinventory.NewAdjustStockUseCase,
	appinventory.NewQueryStockUseCase,
	appcart.NewCreateCartUseCase,
	appcart.NewGetCartUseCase,
	appcart.NewAddLineUseCase,
	appcart.NewUpdateLineUseCase,
	appcart.NewRemoveLineUseCase,
	apporder.NewCheckoutUseCase,
	apporder.NewGetOrderUseCase,
	apporder.NewListOrdersUseCase,
	apporder.NewDeliverOrderUseCase,
	apporder.NewCancelOrderUseCase,
	apppayment.NewConfirmPaymentUseCase,
	apppayment.NewFailPaymentUseCase,
	provideCreateTransactionUseCase,
	apppayment.NewGatewayConfirmUseCase,
	apppayment.NewSimulatePaymentUseCase,
	apppayment.NewStatsUseCase,
	appaudit.NewListEntriesUseCase,
)

var interfaceSet = wire.NewSet(
	middleware.NewAuthMiddleware,
	handler.NewUserHandler,
	provideCatalogHandler,
	handler.NewCartHandler,
	handler.NewOrderHandler,
	providePaymentHandler,
	handler.NewInventoryHandler,
	provideProbes,
	provideHealthHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
	provideHealthChecker,
	wire.Struct(new(App), "*"),
)

// ========================================
// 自定义Provider(需要从Config取参数)
// ========================================

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire)
}

func provideProductCache(cfg *config.Config, client *goredis.Client) *redis.ProductCache {
	return redis.NewProductCache(client, cfg.Redis.ProductTTL)
}

func provideEventPublisher(cfg *config.Config, log *zap.Logger) (shared.EventPublisher, func(), error) {
	return messaging.NewEventPublisher(cfg.MQ, log)
}

func provideGateway(cfg *config.Config, log *zap.Logger) *transbank.Client {
	return transbank.NewClient(cfg.Transbank, log)
}

// provideCreateTransactionUseCase 整个saga的超时取网关超时的两倍
func provideCreateTransactionUseCase(
	cfg *config.Config,
	orderRepo order.Repository,
	paymentRepo payment.Repository,
	gateway payment.Gateway,
	tx shared.Transactor,
) *apppayment.CreateTransactionUseCase {
	timeout := 2 * cfg.Transbank.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return apppayment.NewCreateTransactionUseCase(orderRepo, paymentRepo, gateway, tx, timeout)
}

func provideCatalogHandler(
	cfg *config.Config,
	createProduct *appcatalog.CreateProductUseCase,
	updatePrice *appcatalog.UpdatePriceUseCase,
	getProduct *appcatalog.GetProductUseCase,
	listProducts *appcatalog.ListProductsUseCase,
	branches *appcatalog.BranchUseCase,
	categories *appcatalog.CategoryUseCase,
) *handler.CatalogHandler {
	return handler.NewCatalogHandler(createProduct, updatePrice, getProduct, listProducts, branches, categories, cfg.Inventory.DefaultStockMin)
}

func providePaymentHandler(
	cfg *config.Config,
	confirm *apppayment.ConfirmPaymentUseCase,
	fail *apppayment.FailPaymentUseCase,
	transaction *apppayment.CreateTransactionUseCase,
	gatewayConfirm *apppayment.GatewayConfirmUseCase,
	simulate *apppayment.SimulatePaymentUseCase,
	stats *apppayment.StatsUseCase,
) *handler.PaymentHandler {
	return handler.NewPaymentHandler(confirm, fail, transaction, gatewayConfirm, simulate, stats, cfg.Server.PublicURL)
}

func provideProbes(db *gorm.DB, client *goredis.Client) []probe.Probe {
	return []probe.Probe{probe.MySQL(db), probe.Redis(client)}
}

func provideHealthHandler(probes []probe.Probe) *handler.HealthHandler {
	return handler.NewHealthHandler(probes...)
}

func provideHealthChecker(log *zap.Logger, probes []probe.Probe) *grpcapi.HealthChecker {
	return grpcapi.NewHealthChecker(log, 10*time.Second, probes...)
}
