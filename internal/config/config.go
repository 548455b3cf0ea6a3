package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port      string
	Prod      bool
	MongoURI  string
	MongoDB   string
	JWTSecret string

	RedisAddr       string
	RateLimitPerMin int

	RabbitURL string

	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string // non-empty for MinIO-compatible storage

	GoogleClientID string
}

func Load() Config {
	return Config{
		Port:            getenv("APP_PORT", "8080"),
		Prod:            getenv("APP_ENV", "dev") == "prod",
		MongoURI:        getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getenv("MONGO_DB", "users_db"),
		JWTSecret:       getenv("JWT", "default_secret_key"),
		RedisAddr:       getenv("REDIS_ADDR", ""),
		RateLimitPerMin: atoi(getenv("RATE_LIMIT_PER_MIN", "5")),
		RabbitURL:       getenv("RABBIT_URL", ""),
		S3Region:        getenv("AWS_REGION", "us-east-1"),
		S3Bucket:        getenv("AWS_S3_BUCKET", "user-avatars"),
		S3AccessKey:     getenv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey:     getenv("AWS_SECRET_ACCESS_KEY", ""),
		S3Endpoint:      getenv("AWS_S3_ENDPOINT", ""),
		GoogleClientID:  getenv("GOOGLE_CLIENT_ID", ""),
	}
}

func atoi(s string) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return 0
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
