package config

import (
	"os"
)

type AppConfig struct {
	LogLevel  string
	SeedFile  string
	DebitFee  string
	CreditFee string
}

func Load() AppConfig {
	return AppConfig{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		SeedFile:  getEnv("SEED_FILE", ""),
		DebitFee:  getEnv("DEBIT_FEE", "0.25"),
		CreditFee: getEnv("CREDIT_FEE", "0"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
