package app

import (
	"github.com/yungbote/shadownav-backend/internal/platform/logger"
	"github.com/yungbote/shadownav-backend/internal/utils"
)

type Config struct {
	Env  string
	Port string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Env:  utils.GetEnv("APP_ENV", "development", log),
		Port: utils.GetEnv("PORT", "8080", log),
	}
}
