package main

import (
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"go-workforce/internal/app"
)

func main() {
	_ = godotenv.Load()

	logger := buildLogger()
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := app.RunConsumer(app.LoadConfig()); err != nil {
		logger.Fatal("consumer exited", zap.Error(err))
	}
}

func buildLogger() *zap.Logger {
	if os.Getenv("APP_ENV") == "production" {
		logger, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		return logger
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return logger
}
