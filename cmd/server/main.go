package main

import (
	"fmt"
	"log"

	"access-governance/internal/catalog"
	"access-governance/internal/config"
	"access-governance/internal/database"
	"access-governance/internal/logging"
	"access-governance/internal/server"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if err := database.Init(cfg.DBDSN); err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}

	if cfg.CatalogPath != "" {
		c, err := catalog.Load(cfg.CatalogPath)
		if err != nil {
			logger.Fatal("catalog load failed", zap.String("path", cfg.CatalogPath), zap.Error(err))
		}
		if err := database.SeedCatalog(c); err != nil {
			logger.Fatal("catalog seed failed", zap.Error(err))
		}
	}

	r := server.NewRouter(cfg)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	logger.Info("starting server", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
