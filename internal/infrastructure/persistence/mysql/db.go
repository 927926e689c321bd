package mysql

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/autoparts/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 1. 连接池参数来自配置
// 2. debug模式打印SQL
// 3. database.auto_migrate=true时自动建表
func NewDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	// 1. 配置GORM日志
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	// 2. 连接数据库
	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger:  logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().Truncate(time.Microsecond)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 3. 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// 4. 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	log.Info("mysql connected",
		zap.String("host", cfg.Database.Host),
		zap.String("db", cfg.Database.DBName),
	)

	// 5. 自动迁移表结构
	// 生产环境关闭auto_migrate,使用版本化的迁移脚本
	if cfg.Database.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
	}

	return db, nil
}

// AutoMigrate 自动迁移表结构
// 只会创建表、添加字段和索引,不会删除或修改现有字段
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&CategoryModel{},
		&ProductModel{},
		&BranchModel{},
		&InventoryModel{},
		&MovementModel{},
		&CartModel{},
		&CartLineModel{},
		&OrderModel{},
		&PaymentModel{},
		&AuditModel{},
	)
}

// =========================================
// GORM模型(infrastructure层,领域实体不带tag)
// =========================================

// UserModel 用户
type UserModel struct {
	ID        uint      `gorm:"primaryKey"`
	FullName  string    `gorm:"size:100;not null;comment:姓名"`
	RUT       string    `gorm:"uniqueIndex;size:12;not null;comment:RUT(12345678-5)"`
	Email     string    `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string    `gorm:"size:255;not null;comment:密码(bcrypt)"`
	Phone     string    `gorm:"size:20;comment:电话"`
	Role      string    `gorm:"size:20;not null;default:CLIENTE;comment:角色"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (UserModel) TableName() string { return "users" }

// CategoryModel 商品分类
type CategoryModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:100;not null"`
}

func (CategoryModel) TableName() string { return "categories" }

// ProductModel 商品
// 价格以CLP整数存储(比索没有小数)
type ProductModel struct {
	ID          uint      `gorm:"primaryKey"`
	SKU         string    `gorm:"uniqueIndex;size:50;not null;comment:SKU"`
	Name        string    `gorm:"index:idx_search;size:200;not null;comment:名称"`
	Brand       string    `gorm:"index:idx_search;size:100;not null;comment:品牌"`
	CategoryID  uint      `gorm:"index;comment:分类ID"`
	Price       int64     `gorm:"not null;comment:单价(CLP)"`
	StockMin    int       `gorm:"not null;default:0;comment:安全库存"`
	ImageURL    string    `gorm:"size:500"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (ProductModel) TableName() string { return "products" }

// BranchModel 门店
type BranchModel struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;size:100;not null"`
	Address   string `gorm:"size:255"`
	CreatedAt time.Time
}

func (BranchModel) TableName() string { return "branches" }

// InventoryModel 门店库存
// (product_id, branch_id)唯一,ON DUPLICATE KEY UPDATE依赖这个索引
type InventoryModel struct {
	ID        uint `gorm:"primaryKey"`
	ProductID uint `gorm:"uniqueIndex:uk_product_branch;not null"`
	BranchID  uint `gorm:"uniqueIndex:uk_product_branch;index;not null"`
	Stock     int  `gorm:"not null;default:0;comment:库存(>=0)"`
	UpdatedAt time.Time
}

func (InventoryModel) TableName() string { return "inventory" }

// MovementModel 库存流水
type MovementModel struct {
	ID         uint   `gorm:"primaryKey"`
	ProductID  uint   `gorm:"index:idx_product_branch;not null"`
	BranchID   uint   `gorm:"index:idx_product_branch;not null"`
	Type       string `gorm:"size:20;not null"`
	Quantity   int    `gorm:"not null;comment:带符号数量"`
	StockAfter int    `gorm:"not null"`
	OrderID    uint   `gorm:"index"`
	UserID     uint
	Note       string    `gorm:"size:255"`
	CreatedAt  time.Time `gorm:"index"`
}

func (MovementModel) TableName() string { return "inventory_movements" }

// CartModel 购物车
type CartModel struct {
	ID        uint            `gorm:"primaryKey"`
	UserID    *uint           `gorm:"index"`
	Status    string          `gorm:"size:20;not null;default:OPEN"`
	Lines     []CartLineModel `gorm:"foreignKey:CartID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CartModel) TableName() string { return "carts" }

// CartLineModel 购物车明细
// (cart_id, product_id)唯一,重复加购累加数量
type CartLineModel struct {
	ID        uint  `gorm:"primaryKey"`
	CartID    uint  `gorm:"uniqueIndex:uk_cart_product;not null"`
	ProductID uint  `gorm:"uniqueIndex:uk_cart_product;not null"`
	BranchID  uint  `gorm:"not null"`
	Quantity  int   `gorm:"not null"`
	UnitPrice int64 `gorm:"not null;comment:加购时单价快照"`
	LineTotal int64 `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CartLineModel) TableName() string { return "cart_lines" }

// OrderModel 订单
// cart_id唯一:一个购物车最多生成一个订单
type OrderModel struct {
	ID            uint      `gorm:"primaryKey"`
	OrderNo       string    `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	CartID        uint      `gorm:"uniqueIndex;not null"`
	UserID        uint      `gorm:"index:idx_user_created;not null"`
	Address       string    `gorm:"size:255;not null"`
	Status        string    `gorm:"index;size:20;not null"`
	PaymentMethod string    `gorm:"size:20;not null"`
	Total         int64     `gorm:"not null;comment:总金额(CLP)"`
	CreatedAt     time.Time `gorm:"index:idx_user_created"`
	UpdatedAt     time.Time
}

func (OrderModel) TableName() string { return "orders" }

// PaymentModel 支付
// order_id唯一:每个订单一条支付记录
type PaymentModel struct {
	ID                  uint   `gorm:"primaryKey"`
	PaymentNo           string `gorm:"uniqueIndex;size:32;not null"`
	OrderID             uint   `gorm:"uniqueIndex;not null"`
	Amount              int64  `gorm:"not null"`
	Method              string `gorm:"size:20;not null"`
	Status              string `gorm:"index;size:20;not null"`
	Token               string `gorm:"index;size:100"`
	PaymentURL          string `gorm:"size:500"`
	ExternalRef         string `gorm:"size:100"`
	FailureReason       string `gorm:"size:255"`
	NeedsReconciliation bool   `gorm:"index;not null;default:false"`
	ProcessedAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (PaymentModel) TableName() string { return "payments" }

// AuditModel 审计日志(只追加)
type AuditModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index"`
	Action    string    `gorm:"size:500;not null"`
	CreatedAt time.Time `gorm:"index"`
}

func (AuditModel) TableName() string { return "audit_log" }
