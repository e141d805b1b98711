package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Postgres PostgresConfig `mapstructure:"postgres"` // 下注归档库配置
	Chain    ChainConfig    `mapstructure:"chain"`    // 链上合约配置
	Metrics  MetricsConfig  `mapstructure:"metrics"`  // Prometheus 指标
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// PostgresConfig PostgreSQL 配置；DSN 为空时不落库，仅保留内存历史
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// ChainConfig 链上配置（彩票合约、代币合约、钱包私钥）
type ChainConfig struct {
	RPCURL         string        `mapstructure:"rpc_url"`         // RPC 地址（ws:// 才支持事件订阅）
	ChainID        int64         `mapstructure:"chain_id"`        // 为 0 时从节点读取
	LotteryAddress string        `mapstructure:"lottery_address"` // 彩票合约地址
	TokenAddress   string        `mapstructure:"token_address"`   // 代币合约地址
	PrivateKey     string        `mapstructure:"private_key"`     // 钱包私钥（hex，可带 0x），建议放 .env
	GasLimit       uint64        `mapstructure:"gas_limit"`       // 为 0 时由节点估算
	Timeout        int           `mapstructure:"timeout"`         // HTTP RPC 请求超时（秒）
	Proxy          string        `mapstructure:"proxy"`           // 代理地址
	OutcomeTimeout time.Duration `mapstructure:"outcome_timeout"` // 等待开奖事件超时，0 表示一直等待
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	return LoadConfigFrom("./config")
}

// LoadConfigFrom 从指定目录读取 config.yaml
func LoadConfigFrom(dir string) (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	v.SetTypeByDefaultValue(true)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("chain.timeout", 30)
	v.SetDefault("chain.outcome_timeout", time.Duration(0))
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("CHAIN_RPC_URL"); v != "" {
		cfg.Chain.RPCURL = v
	}
	if v := os.Getenv("CHAIN_PRIVATE_KEY"); v != "" {
		cfg.Chain.PrivateKey = v
	}
	if v := os.Getenv("LOTTERY_ADDRESS"); v != "" {
		cfg.Chain.LotteryAddress = v
	}
	if v := os.Getenv("TOKEN_ADDRESS"); v != "" {
		cfg.Chain.TokenAddress = v
	}
	if v := os.Getenv("CHAIN_PROXY"); v != "" {
		cfg.Chain.Proxy = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
}

// GetGORMConfig 获取 GORM 配置
func (p *PostgresConfig) GetGORMConfig() gorm.Config {
	return gorm.Config{} // 可扩展：添加日志、命名策略等
}
