package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Mock    MockConfig    `mapstructure:"mock"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Mode         string `mapstructure:"mode"`          // debug, release, test
	ReadTimeout  int    `mapstructure:"read_timeout"`  // 秒
	WriteTimeout int    `mapstructure:"write_timeout"` // 秒
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, /path/to/log
}

// MockConfig 模拟后端配置
type MockConfig struct {
	SeedPath        string        `mapstructure:"seed_path"`        // 种子文件，为空使用内置数据
	UpstreamURL     string        `mapstructure:"upstream_url"`     // 未拦截请求转发地址，为空返回 404
	StrictApprovals bool          `mapstructure:"strict_approvals"` // 审批状态流转校验
	MaxPageSize     int           `mapstructure:"max_page_size"`    // 分页上限
	Faults          []FaultConfig `mapstructure:"faults"`           // 启动时预置的故障预算
}

// FaultConfig 预置故障
type FaultConfig struct {
	Capability string `mapstructure:"capability"`
	TenantID   string `mapstructure:"tenant_id"`
	Key        string `mapstructure:"key"`
	Count      int    `mapstructure:"count"`
}

// MetricsConfig Prometheus 指标配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8787)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output_path", "stdout")

	v.SetDefault("mock.seed_path", "")
	v.SetDefault("mock.upstream_url", "")
	v.SetDefault("mock.strict_approvals", false)
	v.SetDefault("mock.max_page_size", 100)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Load 加载配置
// env: 环境名称（dev, test），对应 config/<env>.yaml，文件不存在时只使用默认值和环境变量
// configPath: 配置文件路径（可选，指定后必须存在）
func Load(env string, configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath == "" {
		v.SetConfigName(env)
		v.AddConfigPath("./config")
		v.AddConfigPath("../config")
		v.AddConfigPath("../../config")
	} else {
		v.SetConfigFile(configPath)
	}

	v.SetConfigType("yaml")

	// 读取环境变量（优先级高于配置文件）
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // APP_MOCK_SEED_PATH

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port 非法: %d", c.Server.Port)
	}
	if c.Mock.MaxPageSize <= 0 {
		return fmt.Errorf("mock.max_page_size 必须大于 0")
	}
	for i, f := range c.Mock.Faults {
		if f.Capability == "" || f.Count < 0 {
			return fmt.Errorf("mock.faults[%d] 非法", i)
		}
	}
	return nil
}

// Addr 监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
