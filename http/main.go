package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/tnqbao/gau-object-gallery/config"
	"github.com/tnqbao/gau-object-gallery/consumer/worker"
	"github.com/tnqbao/gau-object-gallery/http/controller"
	routes "github.com/tnqbao/gau-object-gallery/http/route"
	infraPkg "github.com/tnqbao/gau-object-gallery/infra"
	"github.com/tnqbao/gau-object-gallery/realtime"
	"github.com/tnqbao/gau-object-gallery/repository"
	"github.com/tnqbao/gau-object-gallery/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	err := godotenv.Load("staging.env")
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	if cfg.EnvConfig.Environment.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	infra := infraPkg.InitInfra(cfg)
	repo := repository.InitRepository(infra, time.Duration(cfg.EnvConfig.Cache.TTLSeconds)*time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(infra.Logger)
	go hub.Run(ctx)

	var broadcaster service.Broadcaster = hub
	if infra.Produce != nil {
		// every instance relays the shared exchange into its own hub
		openChannel := func() (worker.Channel, error) {
			ch, err := infra.RabbitMQ.Channel()
			if err != nil {
				return nil, err
			}
			return ch, nil
		}
		relay := worker.NewObjectEventConsumer(openChannel, hub, infra.Logger)
		if err := relay.Start(ctx); err != nil {
			infra.Logger.ErrorWithContextf(ctx, err, "Failed to start object event consumer: %v", err)
			log.Fatalf("Failed to start object event consumer: %v", err)
		}
		// events that cannot be published still reach this instance's sessions
		infra.Produce.ObjectEventService.SetFallback(hub)
		broadcaster = infra.Produce.ObjectEventService
	}

	objectService := service.NewObjectService(
		repo.ObjectRepo,
		infra.Storage,
		broadcaster,
		infra.Logger,
		cfg.EnvConfig.Upload.MaxSize,
	)

	ctrl := controller.NewController(cfg, infra, objectService, hub)
	router := routes.SetupRouter(ctrl)

	server := &http.Server{
		Addr:    ":" + cfg.EnvConfig.Server.Port,
		Handler: router,
	}

	go func() {
		infra.Logger.InfoWithContextf(ctx, "HTTP Server started on :%s", cfg.EnvConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	infra.Logger.InfoWithContextf(context.Background(), "Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		infra.Logger.ErrorWithContextf(shutdownCtx, err, "Server forced to shutdown: %v", err)
	}
	infra.Close(shutdownCtx)

	log.Println("Server exited properly")
}
