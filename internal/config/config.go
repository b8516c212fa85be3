package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// AppConfig 汇总运行服务所需的基础配置。
// 配置来源：config/config.yml，敏感项允许通过环境变量覆盖。
type AppConfig struct {
	App struct {
		Name string
		Port string
	}
	Database struct {
		Path string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	JWT struct {
		Secret          string
		AccessTTLMin    int
		RefreshTTLHours int
	}
	SMTP struct {
		Host     string
		Port     string
		Username string
		Password string
		From     string
	}
	RabbitMQ struct {
		URL   string
		Queue string
	}
	Upload struct {
		Dir     string
		URLPath string
	}
}

// Load 读取应用配置，并为缺失项提供安全的默认值。
// 配置文件不存在时不视为错误，直接落到默认值与环境变量。
func Load() (*AppConfig, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath("./config")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &AppConfig{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.App.Name == "" {
		cfg.App.Name = "inkstream"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = getEnvOrDefault("PORT", "8080")
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = getEnvOrDefault("DATABASE_PATH", "inkstream.db")
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = getEnvOrDefault("REDIS_ADDR", "")
	}
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = getEnvOrDefault("JWT_SECRET", "inkstream-dev-secret")
	}
	if cfg.JWT.AccessTTLMin <= 0 {
		cfg.JWT.AccessTTLMin = 30
	}
	if cfg.JWT.RefreshTTLHours <= 0 {
		cfg.JWT.RefreshTTLHours = 24 * 7
	}
	if cfg.SMTP.Host == "" {
		cfg.SMTP.Host = getEnvOrDefault("SMTP_HOST", "")
	}
	if cfg.SMTP.Port == "" {
		cfg.SMTP.Port = getEnvOrDefault("SMTP_PORT", "587")
	}
	if cfg.SMTP.Password == "" {
		cfg.SMTP.Password = getEnvOrDefault("SMTP_PASSWORD", "")
	}
	if cfg.RabbitMQ.URL == "" {
		cfg.RabbitMQ.URL = getEnvOrDefault("RABBITMQ_URL", "")
	}
	if cfg.RabbitMQ.Queue == "" {
		cfg.RabbitMQ.Queue = "engagement.events"
	}
	if cfg.Upload.Dir == "" {
		cfg.Upload.Dir = "web/static/uploads"
	}
	if cfg.Upload.URLPath == "" {
		cfg.Upload.URLPath = "/static/uploads"
	}

	return cfg, nil
}

// getEnvOrDefault 获取环境变量，如果不存在则返回默认值
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
