package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Cfg 是全局配置实例，在LoadConfig成功后可用。
var Cfg *Config

// Config 结构体定义了应用程序的所有配置项，
// 与 config.yaml 文件的结构完全对应。
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

// ServerConfig 定义了服务器相关的配置。
type ServerConfig struct {
	Mode    string     `mapstructure:"mode"`
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
}

// CorsConfig 定义了CORS相关的配置。
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig 定义了数据库和缓存相关的配置。
type DatabaseConfig struct {
	Redis  RedisConfig  `mapstructure:"redis"`
	Sqlite SqliteConfig `mapstructure:"sqlite"`
}

// RedisConfig 定义了Redis的配置。
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SqliteConfig 定义了SQLite的配置。
type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

// StorageConfig 定义了对象存储（笔记文件）的配置。
type StorageConfig struct {
	Endpoint     string        `mapstructure:"endpoint"`
	AccessKey    string        `mapstructure:"accessKey"`
	SecretKey    string        `mapstructure:"secretKey"`
	Bucket       string        `mapstructure:"bucket"`
	UseSSL       bool          `mapstructure:"useSSL"`
	PresignedTTL time.Duration `mapstructure:"presignedTTL"`
}

// AuthConfig 定义了会话令牌的配置。
type AuthConfig struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"tokenTTL"`
}

// LoadConfig 查找、加载并解析配置文件。
// 搜索 ./config/config.yaml 和 ./config.yaml，允许环境变量覆盖任意项，
// 例如 SERVER_ADDRESS=:9090。
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("database.sqlite.path", "studyloot.db")
	v.SetDefault("database.redis.address", "localhost:6379")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("storage.bucket", "studyloot-notes")
	v.SetDefault("storage.presignedTTL", 15*time.Minute)
	v.SetDefault("auth.tokenTTL", 7*24*time.Hour)

	if err := v.ReadInConfig(); err != nil {
		// 配置文件缺失时依赖默认值和环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	Cfg = &cfg
	return Cfg, nil
}
