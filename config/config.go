package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv        string
	Port          string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	JWTSecret     string
	JWTExpiresHrs int
	CORSOrigins   []string
	// Datos institucionales que salen tal cual en la cabecera del reporte IPRESS.
	ClinicName    string
	ClinicCode    string
	ClinicNetwork string
}

var (
	cfg  *Config
	once sync.Once
)

func LoadConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: .env file not found. Relying on environment variables.")
		}
		cfg = &Config{
			AppEnv:        getEnv("APP_ENV", "development"),
			Port:          getEnv("PORT", "8080"),
			DBHost:        getEnv("DB_HOST", "localhost"),
			DBPort:        getEnv("DB_PORT", "5432"),
			DBUser:        os.Getenv("DB_USER"),
			DBPassword:    os.Getenv("DB_PASSWORD"),
			DBName:        os.Getenv("DB_NAME"),
			DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
			JWTSecret:     os.Getenv("JWT_SECRET_KEY"),
			JWTExpiresHrs: getEnvInt("JWT_EXPIRES_HOURS", 8),
			CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "*")),
			ClinicName:    os.Getenv("CLINIC_NAME"),
			ClinicCode:    os.Getenv("CLINIC_CODE"),
			ClinicNetwork: os.Getenv("CLINIC_NETWORK"),
		}
	})
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: %s=%q no es un número, se usa %d", key, v, fallback)
		return fallback
	}
	return n
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
