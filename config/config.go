// Package config 提供服务的 YAML 配置加载。
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 服务配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Upload   UploadConfig   `yaml:"upload"`
	Nats     NatsConfig     `yaml:"nats"`

	// LogLevel 日志级别：debug / info / warn / error
	LogLevel string `yaml:"log_level"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	BasePath     string        `yaml:"base_path"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// DatabaseConfig SQLite 数据库配置
type DatabaseConfig struct {
	// Path 数据库文件路径，":memory:" 表示内存库
	Path string `yaml:"path"`
}

// UploadConfig 上传暂存配置
type UploadConfig struct {
	Dir string `yaml:"dir"`

	// MaxFileSize 单个文件的字节上限，非正值表示不限制
	MaxFileSize int64 `yaml:"max_file_size"`
}

// NatsConfig 创建事件通知配置，默认关闭
type NatsConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "purchasing.db",
		},
		Upload: UploadConfig{
			Dir:         "uploads",
			MaxFileSize: 500 * 1024,
		},
		Nats: NatsConfig{
			Subject: "purchasing.orders.created",
		},
		LogLevel: "info",
	}
}

// Load 加载配置文件并与默认值合并；path 为空时直接返回默认配置
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置的基本合法性
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Nats.Enabled && c.Nats.URL == "" {
		return fmt.Errorf("nats url is required when nats is enabled")
	}
	return nil
}

// Addr 返回监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
