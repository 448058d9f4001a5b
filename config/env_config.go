package config

import (
	"os"
	"strconv"
	"strings"
)

type EnvConfig struct {
	Postgres struct {
		HOST     string
		Database string
		Username string
		Password string
		Port     string
		SSLMode  string
	}
	CORS struct {
		AllowDomains string
		GlobalDomain string
	}
	Redis struct {
		Password  string
		Database  int
		RedisHost string
		RedisPort string
	}
	RabbitMQ struct {
		Host     string
		Port     string
		Username string
		Password string
	}
	Storage struct {
		Provider  string // "minio" or "s3"
		Endpoint  string
		AccessKey string
		SecretKey string
		Bucket    string
		Region    string
		UseSSL    bool
		PublicURL string
	}
	Upload struct {
		MaxSize       int64 // bytes
		RatePerSecond float64
		RateBurst     int
	}
	Realtime struct {
		Fanout string // "amqp" or "local"
	}
	Cache struct {
		TTLSeconds int
	}
	Grafana struct {
		Enabled      bool
		OTLPEndpoint string
		ServiceName  string
	}
	Environment struct {
		Mode  string
		Group string
	}
	Server struct {
		Port string
	}
	PublicAPIURL string
}

func LoadEnvConfig() *EnvConfig {
	var config EnvConfig

	// Postgres
	config.Postgres.HOST = getEnv("PGPOOL_HOST", "localhost")
	config.Postgres.Database = getEnv("PGPOOL_DB", "object_gallery")
	config.Postgres.Username = getEnv("PGPOOL_USER", "postgres")
	config.Postgres.Password = os.Getenv("PGPOOL_PASSWORD")
	config.Postgres.Port = getEnv("PGPOOL_PORT", "5432")
	config.Postgres.SSLMode = getEnv("PGPOOL_SSLMODE", "disable")

	config.CORS.AllowDomains = getEnv("ALLOWED_DOMAINS", "*")
	config.CORS.GlobalDomain = os.Getenv("GLOBAL_DOMAIN")

	config.Redis.Password = os.Getenv("REDIS_PASSWORD")
	config.Redis.Database, _ = strconv.Atoi(os.Getenv("REDIS_DB"))
	config.Redis.RedisHost = getEnv("REDIS_HOST", "localhost")
	config.Redis.RedisPort = getEnv("REDIS_PORT", "6379")

	// RabbitMQ
	config.RabbitMQ.Host = getEnv("RABBITMQ_HOST", "localhost")
	config.RabbitMQ.Port = getEnv("RABBITMQ_PORT", "5672")
	config.RabbitMQ.Username = getEnv("RABBITMQ_USER", "guest")
	config.RabbitMQ.Password = getEnv("RABBITMQ_PASSWORD", "guest")

	// Object storage
	config.Storage.Provider = strings.ToLower(getEnv("STORAGE_PROVIDER", "minio"))
	config.Storage.Endpoint = os.Getenv("STORAGE_ENDPOINT")
	config.Storage.AccessKey = os.Getenv("STORAGE_ACCESS_KEY")
	config.Storage.SecretKey = os.Getenv("STORAGE_SECRET_KEY")
	config.Storage.Bucket = getEnv("STORAGE_BUCKET", "objects")
	config.Storage.Region = getEnv("STORAGE_REGION", "us-east-1")
	config.Storage.UseSSL, _ = strconv.ParseBool(os.Getenv("STORAGE_USE_SSL"))
	config.Storage.PublicURL = strings.TrimRight(os.Getenv("STORAGE_PUBLIC_URL"), "/")
	if config.Storage.PublicURL == "" && config.Storage.Endpoint != "" {
		scheme := "http"
		if config.Storage.UseSSL {
			scheme = "https"
		}
		endpoint := config.Storage.Endpoint
		if !strings.Contains(endpoint, "://") {
			endpoint = scheme + "://" + endpoint
		}
		config.Storage.PublicURL = strings.TrimRight(endpoint, "/") + "/" + config.Storage.Bucket
	}

	// Upload limits
	config.Upload.MaxSize = 10485760 // Default 10MB
	if val := os.Getenv("MAX_UPLOAD_SIZE"); val != "" {
		if size, err := strconv.ParseInt(val, 10, 64); err == nil && size > 0 {
			config.Upload.MaxSize = size
		}
	}
	config.Upload.RatePerSecond = 1
	if val := os.Getenv("UPLOAD_RATE_PER_SECOND"); val != "" {
		if rps, err := strconv.ParseFloat(val, 64); err == nil && rps > 0 {
			config.Upload.RatePerSecond = rps
		}
	}
	config.Upload.RateBurst = 5
	if val := os.Getenv("UPLOAD_RATE_BURST"); val != "" {
		if burst, err := strconv.Atoi(val); err == nil && burst > 0 {
			config.Upload.RateBurst = burst
		}
	}

	config.Realtime.Fanout = strings.ToLower(getEnv("REALTIME_FANOUT", "amqp"))

	config.Cache.TTLSeconds = 300
	if val := os.Getenv("CACHE_TTL_SECONDS"); val != "" {
		if ttl, err := strconv.Atoi(val); err == nil && ttl > 0 {
			config.Cache.TTLSeconds = ttl
		}
	}

	// Grafana/OpenTelemetry
	config.Grafana.Enabled = true
	if val := os.Getenv("OTLP_ENABLED"); val != "" {
		config.Grafana.Enabled, _ = strconv.ParseBool(val)
	}
	grafanaEndpoint := getEnv("GRAFANA_OTLP_ENDPOINT", "localhost:4318")
	// Remove protocol for OpenTelemetry client to avoid duplicate protocols
	if strings.HasPrefix(grafanaEndpoint, "https://") {
		config.Grafana.OTLPEndpoint = strings.TrimPrefix(grafanaEndpoint, "https://")
	} else if strings.HasPrefix(grafanaEndpoint, "http://") {
		config.Grafana.OTLPEndpoint = strings.TrimPrefix(grafanaEndpoint, "http://")
	} else {
		config.Grafana.OTLPEndpoint = grafanaEndpoint
	}
	config.Grafana.ServiceName = getEnv("SERVICE_NAME", "gau-object-gallery")

	config.Environment.Mode = getEnv("DEPLOY_ENV", "development")
	config.Environment.Group = getEnv("GROUP_NAME", "local")

	config.Server.Port = getEnv("PORT", "8080")

	config.PublicAPIURL = strings.TrimRight(getEnv("PUBLIC_API_URL", "http://localhost:"+config.Server.Port), "/")

	return &config
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
