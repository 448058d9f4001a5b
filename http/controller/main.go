package controller

import (
	"github.com/gorilla/websocket"

	"github.com/tnqbao/gau-object-gallery/config"
	"github.com/tnqbao/gau-object-gallery/infra"
	"github.com/tnqbao/gau-object-gallery/realtime"
	"github.com/tnqbao/gau-object-gallery/service"
)

type Controller struct {
	Config        *config.Config
	Infra         *infra.Infra
	ObjectService *service.ObjectService
	Hub           *realtime.Hub
	upgrader      websocket.Upgrader
}

func NewController(config *config.Config, infra *infra.Infra, objectService *service.ObjectService, hub *realtime.Hub) *Controller {
	if objectService == nil {
		panic("Failed to initialize Object service")
	}
	if hub == nil {
		panic("Failed to initialize Realtime hub")
	}

	ctrl := &Controller{
		Config:        config,
		Infra:         infra,
		ObjectService: objectService,
		Hub:           hub,
	}
	ctrl.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     newOriginChecker(config.EnvConfig.CORS.AllowDomains),
	}
	return ctrl
}
