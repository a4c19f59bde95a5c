package main

import (
	"github.com/caarlos0/env/v6"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ai-capital/ai-capital-backend/internal"
	"github.com/ai-capital/ai-capital-backend/internal/config"
)

var (
	cfg config.App
)

func init() {
	err := env.Parse(&cfg)
	if err != nil {
		panic(err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	zerolog.SetGlobalLevel(level)
}

func main() {
	app, err := internal.NewApplication(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init application")
	}

	app.Run()
}
