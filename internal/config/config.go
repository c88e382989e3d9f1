// Package config loads runtime configuration from the environment, with
// optional .env support for local development.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	BindAddr string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret string

	// Upload roots. Photos are served publicly; design files only through
	// signed URLs.
	PublicUploadDir  string
	PrivateUploadDir string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, using process environment")
	}

	return Config{
		BindAddr:         getenv("BIND_ADDR", ":8080"),
		DBHost:           getenv("DB_HOST", "localhost"),
		DBPort:           getenv("DB_PORT", "5432"),
		DBUser:           getenv("DB_USER", "postgres"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           getenv("DB_NAME", "print3d"),
		DBSSLMode:        getenv("DB_SSLMODE", "disable"),
		JWTSecret:        getenv("JWT_SECRET", "dev-only-secret"),
		PublicUploadDir:  getenv("PUBLIC_UPLOAD_DIR", "./public/uploads"),
		PrivateUploadDir: getenv("PRIVATE_UPLOAD_DIR", "./private/designs"),
	}
}

func (c Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
