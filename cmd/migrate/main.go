package main

import (
	"localguide/config"
	"localguide/helper"
	"localguide/shared/logger"
	"os"

	"github.com/rs/zerolog/log"
)

const (
	argLength = 2
)

func main() {
	cfg := config.Get()

	logger.InitLogger(cfg)

	if len(os.Args) < argLength {
		log.Fatal().Msg("Migration direction (up/down) is required")
	}

	if err := helper.Runner(cfg, os.Args[1]); err != nil {
		log.Fatal().Err(err).Msg("Invalid direction. Use 'up', 'down', 'drop' or 'step-up'")
	}
}
