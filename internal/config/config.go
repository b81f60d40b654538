package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config hospilink-data（HTTP API）配置
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled bool
	Database  DatabaseConfig
	Redis     struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	Sync SyncConfig `yaml:"sync"`
	MQTT MQTTConfig `yaml:"mqtt"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// DSN 获取数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// SyncConfig 患者目录同步服务配置（入出院状态回写）
type SyncConfig struct {
	Enabled bool   `yaml:"enabled"`  // 是否启用远端状态同步（默认 false）
	BaseURL string `yaml:"base_url"` // 患者目录服务地址
	APIKey  string `yaml:"api_key"`  // API Key（可选）
}

// MQTTConfig MQTT 配置（用于 TAT 超时报警推送）
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`   // 是否启用 MQTT 报警推送（默认 false）
	Broker   string `yaml:"broker"`    // MQTT Broker 地址（如 "tcp://localhost:1883"）
	ClientID string `yaml:"client_id"` // 客户端 ID
	Username string `yaml:"username"`  // 用户名（可选）
	Password string `yaml:"password"`  // 密码（可选）
	Topic    string `yaml:"topic"`     // 报警发布主题
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// Default to true for local dev: if DB is unavailable, hospilink-data will
	// fall back to the in-memory patient repo, so list pages still render.
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "hospilink")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0
	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	// 患者目录同步配置（默认禁用，失败只告警不回滚）
	cfg.Sync.Enabled = getEnv("SYNC_ENABLED", "false") == "true"
	cfg.Sync.BaseURL = getEnv("SYNC_BASE_URL", "http://localhost:8090")
	cfg.Sync.APIKey = getEnv("SYNC_API_KEY", "")

	// MQTT 配置（TAT 超时报警，默认禁用）
	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "hospilink-data-alerts")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "hospilink/ipd/tat-alerts")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
