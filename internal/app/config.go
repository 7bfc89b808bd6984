package app

import (
	"os"
	"time"

	"go-workforce/internal/bootstrap"
	"go-workforce/internal/notification"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	RedisAddr   string
	KafkaBroker string

	Server bootstrap.ServerConfig
	SMTP   notification.SMTPConfig

	OutboxPollInterval   time.Duration
	DeletionPollInterval time.Duration
}

func LoadConfig() Config {
	return Config{
		DBHost:     getenv("DB_HOST", "localhost"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPassword: getenv("DB_PASSWORD", "postgres"),
		DBName:     getenv("DB_NAME", "workforce"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),

		RedisAddr:   getenv("REDIS_ADDR", "localhost:6379"),
		KafkaBroker: getenv("KAFKA_BROKER", "localhost:9092"),

		Server: bootstrap.ServerConfig{
			Port:         getenv("HTTP_PORT", "8080"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},

		SMTP: notification.SMTPConfig{
			Host:     getenv("SMTP_HOST", "localhost"),
			Port:     getenv("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getenv("SMTP_FROM", "no-reply@workforce.local"),
		},

		OutboxPollInterval:   5 * time.Second,
		DeletionPollInterval: time.Hour,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
