package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
server:
  port: 8081
database:
  host: db
  port: 3306
  user: app
  password: secret
  dbname: autoparts
  loc: America/Santiago
`

func writeConfig(t *testing.T, content string) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	return dir
}

func TestLoadFrom(t *testing.T) {
	t.Run("默认值补全", func(t *testing.T) {
		cfg, err := LoadFrom(writeConfig(t, minimalYAML))
		require.NoError(t, err)

		assert.Equal(t, 8081, cfg.Server.Port)
		assert.Equal(t, 2*time.Hour, cfg.JWT.AccessTokenExpire)
		assert.Equal(t, TransbankIntegration, cfg.Transbank.Environment)
		assert.True(t, cfg.Transbank.Simulation)
		assert.InDelta(t, 0.6, cfg.Transbank.SuccessRate, 1e-9)
		assert.Equal(t, "autoparts.events", cfg.MQ.Exchange)
		assert.Equal(t, 5*time.Minute, cfg.Redis.ProductTTL)
	})

	t.Run("环境变量覆盖", func(t *testing.T) {
		t.Setenv("AUTOPARTS_DATABASE_PASSWORD", "from-env")
		t.Setenv("AUTOPARTS_SERVER_PORT", "9999")

		cfg, err := LoadFrom(writeConfig(t, minimalYAML))
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Database.Password)
		assert.Equal(t, 9999, cfg.Server.Port)
	})

	t.Run("配置文件不存在", func(t *testing.T) {
		_, err := LoadFrom(t.TempDir())
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8080, Mode: "debug"},
			JWT:    JWTConfig{Secret: "s"},
			Transbank: TransbankConfig{
				Environment: TransbankIntegration,
				Simulation:  true,
				SuccessRate: 0.6, PendingRate: 0.2, FailureRate: 0.2,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"合法配置", func(c *Config) {}, false},
		{"端口非法", func(c *Config) { c.Server.Port = 0 }, true},
		{"release使用默认密钥", func(c *Config) {
			c.Server.Mode = "release"
			c.JWT.Secret = defaultJWTSecret
		}, true},
		{"未知Transbank环境", func(c *Config) { c.Transbank.Environment = "staging" }, true},
		{"权重之和不为1", func(c *Config) { c.Transbank.FailureRate = 0.5 }, true},
		{"生产环境缺少凭证", func(c *Config) {
			c.Transbank.Environment = TransbankProduction
			c.Transbank.Simulation = false
		}, true},
		{"启用MQ缺少URL", func(c *Config) { c.MQ.Enabled = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validate(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDSNAndURLs(t *testing.T) {
	d := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: 3306, DBName: "autoparts", Charset: "utf8mb4", ParseTime: true, Loc: "America/Santiago"}
	assert.Equal(t, "u:p@tcp(h:3306)/autoparts?charset=utf8mb4&parseTime=true&loc=America%2FSantiago", d.DSN())

	assert.Equal(t, "https://webpay3gint.transbank.cl", TransbankConfig{Environment: TransbankIntegration}.BaseURL())
	assert.Equal(t, "https://webpay3g.transbank.cl", TransbankConfig{Environment: TransbankProduction}.BaseURL())
	assert.Equal(t, "localhost:6379", RedisConfig{Host: "localhost", Port: 6379}.Addr())
}
