package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/metrilive/internal/config"
	"github.com/metrilive/internal/db"
	"github.com/metrilive/internal/facebook"
	"github.com/metrilive/internal/handler"
	"github.com/metrilive/internal/logging"
	"github.com/metrilive/internal/router"
)

func main() {
	log := logging.Component("server")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stdout})
	log = logging.Component("server")
	gin.SetMode(cfg.GinMode)

	r, err := setupServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("failed to set up server")
	}

	log.Info().Str("addr", cfg.ListenAddr).Str("graph_version", cfg.FacebookGraphVersion).Msg("server listening")
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("failed to run server")
	}
}

// setupServer 初始化数据库、超级管理员和 Graph 客户端，返回配置好的路由。
func setupServer(cfg config.AppConfig) (*gin.Engine, error) {
	if err := db.Init(cfg.DatabasePath); err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	if err := db.EnsureAdmin(db.DB, cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
		return nil, fmt.Errorf("ensure super root user: %w", err)
	}

	graph := facebook.NewClient(facebook.Options{
		BaseURL:  cfg.FacebookGraphURL,
		Version:  cfg.FacebookGraphVersion,
		Timeout:  cfg.FacebookTimeout,
		MaxPages: cfg.FacebookMaxPages,
	})

	api := handler.NewAPI(db.NewStore(db.DB), graph)
	return router.SetupRouter(api, cfg.SessionSecret), nil
}
