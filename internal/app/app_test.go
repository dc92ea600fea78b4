package app

import (
	"time"

	"github.com/predictleague/prediction-league/internal/config"
)

func defaultTestConfig() config.Config {
	return config.Config{
		AppEnv:             config.EnvDev,
		ServiceName:        "prediction-league-api",
		HTTPAddr:           ":0",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       15 * time.Second,
		CORSAllowedOrigins: []string{"*"},
		SweepWorkers:       2,
		KalshiBaseURL:      "https://api.elections.kalshi.com/trade-api/v2",
		KalshiTimeout:      5 * time.Second,
		KalshiPageLimit:    25,
	}
}
