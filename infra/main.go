package infra

import (
	"context"
	"fmt"

	"github.com/tnqbao/gau-object-gallery/config"
	"github.com/tnqbao/gau-object-gallery/infra/produce"
)

const (
	StorageProviderMinio = "minio"
	StorageProviderS3    = "s3"

	FanoutAMQP  = "amqp"
	FanoutLocal = "local"
)

// HealthCheck probes one backing service for GET /health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Infra struct {
	Telemetry    *TelemetryClient
	Logger       *LoggerClient
	Redis        *RedisClient
	Postgres     *PostgresClient
	RabbitMQ     *RabbitMQClient
	Produce      *produce.Produce
	Minio        *MinioClient
	S3           *S3Client
	Storage      *BlobStore
	HealthChecks []HealthCheck
}

var infraInstance *Infra

func InitInfra(cfg *config.Config) *Infra {
	if infraInstance != nil {
		return infraInstance
	}

	telemetry := InitTelemetry(cfg.EnvConfig)

	logger := InitLoggerClient(cfg.EnvConfig)
	if logger == nil {
		panic("Failed to initialize Logger service")
	}

	redis := InitRedisClient(cfg.EnvConfig)
	if redis == nil {
		panic("Failed to initialize Redis service")
	}

	postgres := InitPostgresClient(cfg.EnvConfig)
	if postgres == nil {
		panic("Failed to initialize Postgres service")
	}

	infraInstance = &Infra{
		Telemetry: telemetry,
		Logger:    logger,
		Redis:     redis,
		Postgres:  postgres,
		HealthChecks: []HealthCheck{
			{Name: "postgres", Check: postgres.Ping},
			{Name: "redis", Check: redis.Ping},
		},
	}

	var provider ObjectProvider
	switch cfg.EnvConfig.Storage.Provider {
	case StorageProviderMinio:
		minio := InitMinioClient(cfg.EnvConfig)
		if minio == nil {
			panic("Failed to initialize MinIO service")
		}
		infraInstance.Minio = minio
		infraInstance.HealthChecks = append(infraInstance.HealthChecks, HealthCheck{Name: "storage", Check: minio.Ping})
		provider = minio
	case StorageProviderS3:
		s3 := InitS3Client(cfg.EnvConfig)
		if s3 == nil {
			panic("Failed to initialize S3 service")
		}
		infraInstance.S3 = s3
		infraInstance.HealthChecks = append(infraInstance.HealthChecks, HealthCheck{Name: "storage", Check: s3.Ping})
		provider = s3
	default:
		panic(fmt.Sprintf("Unknown storage provider %q", cfg.EnvConfig.Storage.Provider))
	}
	infraInstance.Storage = NewBlobStore(provider, logger)

	if cfg.EnvConfig.Realtime.Fanout == FanoutAMQP {
		rabbitMQ := InitRabbitMQClient(cfg.EnvConfig)
		if rabbitMQ == nil {
			panic("Failed to initialize RabbitMQ service")
		}

		produceService := produce.InitProduce(rabbitMQ, logger)
		if produceService == nil {
			panic("Failed to initialize Produce service")
		}

		infraInstance.RabbitMQ = rabbitMQ
		infraInstance.Produce = produceService
		infraInstance.HealthChecks = append(infraInstance.HealthChecks, HealthCheck{Name: "rabbitmq", Check: rabbitMQ.Ping})
	}

	return infraInstance
}

func GetClient() *Infra {
	if infraInstance == nil {
		panic("Infra not initialized. Call InitInfra() first.")
	}
	return infraInstance
}

// Close releases connections in reverse start order.
func (i *Infra) Close(ctx context.Context) {
	if i.RabbitMQ != nil {
		if err := i.RabbitMQ.Close(); err != nil {
			i.Logger.WarningWithContextf(ctx, "[Infra] Failed to close RabbitMQ: %v", err)
		}
	}
	if err := i.Postgres.Close(); err != nil {
		i.Logger.WarningWithContextf(ctx, "[Infra] Failed to close Postgres: %v", err)
	}
	if err := i.Redis.Client.Close(); err != nil {
		i.Logger.WarningWithContextf(ctx, "[Infra] Failed to close Redis: %v", err)
	}
	if err := i.Telemetry.Shutdown(ctx); err != nil {
		i.Logger.WarningWithContextf(ctx, "[Infra] Failed to flush telemetry: %v", err)
	}
}
