package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// const dsn = "host=localhost user=postgres password=password dbname=bitlibro port=5432 sslmode=disable TimeZone=UTC"

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := GetEnv("DATABASE_SSLMODE", "disable")
	DATABASE_TIMEZONE := GetEnv("DATABASE_TIMEZONE", "UTC")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

func GetEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func GetEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

const DATE_PARSE_FORMAT = "2006-01-02"

const (
	MAX_RESERVATION_DAYS = 30
	MAX_BOOK_IMAGES      = 3
	MAX_IMAGE_SIZE       = 2 * 1024 * 1024
	DEFAULT_PAGE_SIZE    = 10
	MAX_PAGE_SIZE        = 100
	CLIENT_EMAIL_DOMAIN  = "fake.com"
)

var ALLOWED_IMAGE_EXTENSIONS = []string{".jpg", ".jpeg", ".png"}

const (
	DEFAULT_JWT_ISSUER   = "bitlibro"
	DEFAULT_JWT_AUDIENCE = "bitlibro-api"
)

func JWTSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

func JWTIssuer() string {
	return GetEnv("JWT_ISSUER", DEFAULT_JWT_ISSUER)
}

func JWTAudience() string {
	return GetEnv("JWT_AUDIENCE", DEFAULT_JWT_AUDIENCE)
}

func JWTTTL() time.Duration {
	return time.Duration(GetEnvInt("JWT_TTL_MINUTES", 60)) * time.Minute
}
