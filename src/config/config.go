package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config 结构体定义了应用程序的配置结构
type Config struct {
	Data   DataConfig   `koanf:"data"`
	Server ServerConfig `koanf:"server"`
	Log    LogConfig    `koanf:"log"`
	Export ExportConfig `koanf:"export"`
	Watch  WatchConfig  `koanf:"watch"`
}

// DataConfig 原始数据源
type DataConfig struct {
	Driver    string `koanf:"driver" validate:"oneof=sqlite xlsx csv"` // 数据源类型
	Path      string `koanf:"path" validate:"required"`                // 数据库或文件路径
	Table     string `koanf:"table" validate:"required_if=Driver sqlite"`
	Sheet     string `koanf:"sheet" validate:"required_if=Driver xlsx"` // xlsx工作表名
	HeaderRow int    `koanf:"header_row" validate:"min=0"`              // xlsx标题行(从0开始)
}

type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	CORSOrigins  []string      `koanf:"cors_origins"`
}

type LogConfig struct {
	File    string `koanf:"file"`
	Level   string `koanf:"level" validate:"oneof=debug info warn error"`
	Format  string `koanf:"format" validate:"oneof=json console"`
	MaxSize string `koanf:"max_size"` // 如 "100 * 1024 * 1024"
	Stderr  bool   `koanf:"stderr"`
}

// ExportConfig 定时导出报表
type ExportConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Schedule string `koanf:"schedule" validate:"required_if=Enabled true"` // cron表达式，如 "@every 24h"
	Dir      string `koanf:"dir" validate:"required_if=Enabled true"`
}

// WatchConfig 数据文件变更提醒
type WatchConfig struct {
	Enabled bool `koanf:"enabled"`
}

// EnvPrefix 环境变量前缀，AIRLINE_DATA_PATH -> data.path
const EnvPrefix = "AIRLINE_"

// ConfigPathEnvVar 指定配置文件路径的环境变量
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths 未指定路径时依次查找
var DefaultConfigPaths = []string{
	"config.yaml",
	"config/config.yaml",
}

var (
	once     sync.Once
	instance *Config
	loadErr  error
)

// Default 默认配置
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Driver: "sqlite",
			Path:   "data/airline",
			Table:  "airline_safety",
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			CORSOrigins:  []string{"*"},
		},
		Log: LogConfig{
			File:    "app.log",
			Level:   "info",
			Format:  "json",
			MaxSize: "100 * 1024 * 1024",
		},
		Export: ExportConfig{
			Schedule: "@every 24h",
			Dir:      "export",
		},
	}
}

// LoadConfig 进程内只加载一次配置
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		instance, loadErr = Load(path)
	})
	return instance, loadErr
}

// Load 依次加载：默认值 -> 配置文件 -> 环境变量
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("加载默认配置失败: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("读取环境变量失败: %w", err)
	}
	if err := splitList(k, "server.cors_origins"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}
	return nil
}

// Addr 监听地址
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envKey AIRLINE_LOG_MAX_SIZE -> log.max_size
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, rest, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}
	return section + "." + rest
}

// splitList 环境变量中的逗号分隔值转为切片
func splitList(k *koanf.Koanf, path string) error {
	s, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	var items []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	if err := k.Set(path, items); err != nil {
		return fmt.Errorf("设置 %s 失败: %w", path, err)
	}
	return nil
}
