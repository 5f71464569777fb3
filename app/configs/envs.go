package configs

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type ENV struct {
	AppEnv          string
	Port            string
	DBDriver        string
	DBHost          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBPort          string
	DBDSN           string
	AppAuthKey      string
	AppEncKey       string
	JWTSecret       string
	JWTTTLHours     int
	CSRFKey         string
	StorageDriver   string
	StorageLocalDir string
	StoragePublic   string
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	CurrencySymbol  string
}

func LoadEnv() ENV {

	if err := godotenv.Load(".env"); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	return ENV{
		AppEnv:          getEnv("APP_ENV", "development"),
		Port:            getEnv("APP_PORT", ":8080"),
		DBDriver:        getEnv("DB_DRIVER", "mysql"),
		DBHost:          os.Getenv("DB_HOST"),
		DBUser:          os.Getenv("DB_USER"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBName:          os.Getenv("DB_NAME"),
		DBPort:          getEnv("DB_PORT", "3306"),
		DBDSN:           os.Getenv("DB_DSN"),
		AppAuthKey:      os.Getenv("APP_AUTH_KEY"),
		AppEncKey:       os.Getenv("APP_ENC_KEY"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTTTLHours:     getEnvInt("JWT_TTL_HOURS", 24),
		CSRFKey:         os.Getenv("CSRF_KEY"),
		StorageDriver:   getEnv("STORAGE_DRIVER", "local"),
		StorageLocalDir: getEnv("STORAGE_LOCAL_DIR", "storage/product"),
		StoragePublic:   getEnv("STORAGE_PUBLIC_URL", "/media/product"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3Region:        os.Getenv("S3_REGION"),
		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		S3AccessKey:     os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:     os.Getenv("S3_SECRET_KEY"),
		CurrencySymbol:  getEnv("CURRENCY_SYMBOL", "$"),
	}
}

func (e ENV) IsProduction() bool {
	return e.AppEnv == "production" || e.AppEnv == "prod"
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
		slog.Warn("invalid integer in environment, using default", "key", key, "value", v)
		return fallback
	}
	return n
}
