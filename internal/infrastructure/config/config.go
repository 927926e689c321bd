package config

import (
	"fmt"
	"math"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Transbank环境
const (
	TransbankIntegration = "integration"
	TransbankProduction  = "production"
)

// Config 全局配置结构
// 设计说明：使用Viper管理配置，支持YAML文件、环境变量覆盖
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Transbank TransbankConfig `mapstructure:"transbank"`
	MQ        MQConfig        `mapstructure:"mq"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Inventory InventoryConfig `mapstructure:"inventory"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	GRPCPort     int           `mapstructure:"grpc_port"` // 健康检查gRPC端口，0表示不启动
	Mode         string        `mapstructure:"mode"`      // debug | release | test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	SlowRequest  time.Duration `mapstructure:"slow_request"` // 慢请求告警阈值
	// PublicURL 对外地址，拼接WebPay回跳地址（/api/v1/transbank/return）
	PublicURL string `mapstructure:"public_url"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	Charset         string        `mapstructure:"charset"`
	ParseTime       bool          `mapstructure:"parse_time"`
	Loc             string        `mapstructure:"loc"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN 生成MySQL连接字符串
// 格式：user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=Local
// 注意：loc参数需要URL编码（America/Santiago → America%2FSantiago）
func (d DatabaseConfig) DSN() string {
	loc := url.QueryEscape(d.Loc)
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset, d.ParseTime, loc)
}

type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	ProductTTL   time.Duration `mapstructure:"product_ttl"` // 商品详情缓存TTL
}

// Addr 返回Redis地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpire  time.Duration `mapstructure:"access_token_expire"`
	RefreshTokenExpire time.Duration `mapstructure:"refresh_token_expire"`
}

type LogConfig struct {
	Level        string `mapstructure:"level"`  // debug | info | warn | error
	Format       string `mapstructure:"format"` // console | json
	Output       string `mapstructure:"output"` // stdout | stderr | /path/to/file
	EnableCaller bool   `mapstructure:"enable_caller"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	ExposeHeaders    []string `mapstructure:"expose_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"` // 秒
}

// TransbankConfig WebPay Plus配置
type TransbankConfig struct {
	Environment  string        `mapstructure:"environment"` // integration | production
	CommerceCode string        `mapstructure:"commerce_code"`
	APIKey       string        `mapstructure:"api_key"`
	Simulation   bool          `mapstructure:"simulation"` // 不调用真实网关
	Timeout      time.Duration `mapstructure:"timeout"`
	// 模拟支付随机结果的权重，三者之和为1
	SuccessRate float64 `mapstructure:"success_rate"`
	PendingRate float64 `mapstructure:"pending_rate"`
	FailureRate float64 `mapstructure:"failure_rate"`
	// 熔断：连续失败次数、打开持续时间
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
}

// BaseURL 按环境返回WebPay主机
func (t TransbankConfig) BaseURL() string {
	if t.Environment == TransbankProduction {
		return "https://webpay3g.transbank.cl"
	}
	return "https://webpay3gint.transbank.cl"
}

// MQConfig RabbitMQ配置
type MQConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	URL          string `mapstructure:"url"`
	Exchange     string `mapstructure:"exchange"`
	ExchangeType string `mapstructure:"exchange_type"`
	Queue        string `mapstructure:"queue"` // notifier消费队列
}

// TracingConfig OpenTelemetry配置
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// MetricsConfig Prometheus配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// InventoryConfig 库存相关配置
type InventoryConfig struct {
	// DefaultStockMin 创建商品未指定安全库存时的默认值
	DefaultStockMin int `mapstructure:"default_stock_min"`
}

// Load 加载配置文件
// 支持：
// 1. 默认加载config/config.yaml
// 2. 通过环境变量AUTOPARTS_ENV指定环境（如config.prod.yaml）
// 3. 环境变量覆盖（如AUTOPARTS_DATABASE_PASSWORD）
func Load() (*Config, error) {
	return LoadFrom("./config", ".")
}

// LoadFrom 从指定目录加载配置
func LoadFrom(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetConfigName("config")
	if env := os.Getenv("AUTOPARTS_ENV"); env != "" {
		v.SetConfigName("config." + env)
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 环境变量绑定（AUTOPARTS_DATABASE_PASSWORD → database.password）
	v.SetEnvPrefix("AUTOPARTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.slow_request", time.Second)
	v.SetDefault("server.public_url", "http://localhost:8080")

	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parse_time", true)
	v.SetDefault("database.loc", "Local")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.product_ttl", 5*time.Minute)

	v.SetDefault("jwt.secret", defaultJWTSecret)
	v.SetDefault("jwt.access_token_expire", 2*time.Hour)
	v.SetDefault("jwt.refresh_token_expire", 7*24*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("transbank.environment", TransbankIntegration)
	v.SetDefault("transbank.simulation", true)
	v.SetDefault("transbank.timeout", 10*time.Second)
	v.SetDefault("transbank.success_rate", 0.6)
	v.SetDefault("transbank.pending_rate", 0.2)
	v.SetDefault("transbank.failure_rate", 0.2)
	v.SetDefault("transbank.breaker_failures", 5)
	v.SetDefault("transbank.breaker_timeout", 30*time.Second)

	v.SetDefault("mq.exchange", "autoparts.events")
	v.SetDefault("mq.exchange_type", "topic")
	v.SetDefault("mq.queue", "autoparts.notifier")

	v.SetDefault("tracing.service_name", "autoparts-api")
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.sample_ratio", 1.0)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("inventory.default_stock_min", 5)
}

// validate 配置校验
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", cfg.Server.Port)
	}
	if cfg.Server.GRPCPort < 0 || cfg.Server.GRPCPort > 65535 {
		return fmt.Errorf("无效的gRPC端口: %d", cfg.Server.GRPCPort)
	}

	if cfg.JWT.Secret == defaultJWTSecret && cfg.Server.Mode == "release" {
		return fmt.Errorf("生产环境必须修改JWT密钥")
	}

	tb := cfg.Transbank
	switch tb.Environment {
	case TransbankIntegration, TransbankProduction:
	default:
		return fmt.Errorf("未知的Transbank环境: %s", tb.Environment)
	}
	if tb.Environment == TransbankProduction && !tb.Simulation && (tb.CommerceCode == "" || tb.APIKey == "") {
		return fmt.Errorf("Transbank生产环境必须配置commerce_code和api_key")
	}
	if tb.SuccessRate < 0 || tb.PendingRate < 0 || tb.FailureRate < 0 {
		return fmt.Errorf("模拟支付权重不能为负数")
	}
	if sum := tb.SuccessRate + tb.PendingRate + tb.FailureRate; math.Abs(sum-1) > 0.001 {
		return fmt.Errorf("模拟支付权重之和必须为1，当前为%.3f", sum)
	}

	if cfg.MQ.Enabled && cfg.MQ.URL == "" {
		return fmt.Errorf("启用消息队列时必须配置mq.url")
	}
	return nil
}
