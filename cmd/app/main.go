package main

import (
	"localguide/config"
	"localguide/di"
	"localguide/helper"
	"localguide/shared/logger"

	"github.com/rs/zerolog/log"
)

// @title Local Guide API
// @version 1.0
// @description Marketplace connecting travellers with local tour guides.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	cfg := config.Get()

	logger.InitLogger(cfg)

	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	http := di.InitializeService()
	http.Serve()
}
