package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string `koanf:"listen_addr"`
	Port              string `koanf:"port" validate:"required,numeric"`
	DatabasePath      string `koanf:"database_path" validate:"required"`
	SessionSecret     string `koanf:"session_secret" validate:"required,min=8"`
	GinMode           string `koanf:"gin_mode" validate:"oneof=debug release test"`
	LogLevel          string `koanf:"log_level" validate:"oneof=trace debug info warn error disabled"`
	LogFormat         string `koanf:"log_format" validate:"oneof=json console"`
	SuperRootUserName string `koanf:"super_root_user_name"`
	SuperRootPassword string `koanf:"super_root_password"`

	FacebookGraphURL     string        `koanf:"facebook_graph_url" validate:"required,url"`
	FacebookGraphVersion string        `koanf:"facebook_graph_version" validate:"required"`
	FacebookTimeout      time.Duration `koanf:"facebook_timeout" validate:"gt=0"`
	FacebookMaxPages     int           `koanf:"facebook_max_pages" validate:"gte=1"`
}

func defaults() AppConfig {
	return AppConfig{
		Port:                 "8080",
		DatabasePath:         "metrilive.db",
		SessionSecret:        "metrilive-dev-secret",
		GinMode:              "release",
		LogLevel:             "info",
		LogFormat:            "json",
		FacebookGraphURL:     "https://graph.facebook.com",
		FacebookGraphVersion: "v19.0",
		FacebookTimeout:      30 * time.Second,
		FacebookMaxPages:     10,
	}
}

// Load 依次叠加默认值与环境变量（PORT、DATABASE_PATH 等），并校验结果。
func Load() (AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return AppConfig{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 只接受已有配置键对应的环境变量：DATABASE_PATH -> database_path，PATH 等忽略
	if err := k.Load(env.Provider("", ".", envMapper(k)), nil); err != nil {
		return AppConfig{}, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate 检查配置项的取值范围。
func (c AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

func (c *AppConfig) normalize() {
	c.Port = strings.TrimSpace(c.Port)
	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		c.ListenAddr = fmt.Sprintf(":%s", c.Port)
	}
	c.DatabasePath = strings.TrimSpace(c.DatabasePath)
	c.SessionSecret = strings.TrimSpace(c.SessionSecret)
	c.GinMode = strings.ToLower(strings.TrimSpace(c.GinMode))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.SuperRootUserName = strings.TrimSpace(c.SuperRootUserName)
	c.SuperRootPassword = strings.TrimSpace(c.SuperRootPassword)
	c.FacebookGraphURL = strings.TrimRight(strings.TrimSpace(c.FacebookGraphURL), "/")
	c.FacebookGraphVersion = strings.TrimSpace(c.FacebookGraphVersion)
}

// envMapper maps an environment variable to the config key of the same
// lowercased name. Variables without a default key are dropped, so the
// unrelated process environment never reaches koanf.
func envMapper(known *koanf.Koanf) func(string) string {
	return func(name string) string {
		key := strings.ToLower(strings.TrimSpace(name))
		if !known.Exists(key) {
			return ""
		}
		return key
	}
}
