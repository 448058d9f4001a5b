package produce

import (
	"context"
)

// Logger is the subset of infra.LoggerClient used by publishers.
type Logger interface {
	InfoWithContextf(ctx context.Context, format string, args ...interface{})
	ErrorWithContextf(ctx context.Context, err error, format string, args ...interface{})
}

type Produce struct {
	ObjectEventService *ObjectEventService
}

func InitProduce(channel Channel, logger Logger) *Produce {
	objectEventService := InitObjectEventService(channel, logger)
	if objectEventService == nil {
		panic("Failed to initialize Object event service")
	}

	return &Produce{
		ObjectEventService: objectEventService,
	}
}
