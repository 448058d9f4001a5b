package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-object-gallery/http/controller/dto"
	"github.com/tnqbao/gau-object-gallery/utils"
)

const healthCheckTimeout = 3 * time.Second

func (ctrl *Controller) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	for _, check := range ctrl.Infra.HealthChecks {
		if err := check.Check(ctx); err != nil {
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[Health] %s check failed: %v", check.Name, err)
			utils.JSON503(c, fmt.Sprintf("%s unavailable: %v", check.Name, err))
			return
		}
	}

	utils.JSON200(c, dto.HealthResponseDTO{
		Status:  "ok",
		Clients: ctrl.Hub.ClientCount(),
	})
}
