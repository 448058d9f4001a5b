package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-object-gallery/http/controller"
)

type Middlewares struct {
	CORSMiddleware            gin.HandlerFunc
	UploadRateLimitMiddleware gin.HandlerFunc
}

func NewMiddlewares(ctrl *controller.Controller) (*Middlewares, error) {
	cors := CORSMiddleware(ctrl.Config.EnvConfig)
	uploadRateLimit := NewIPRateLimiter(
		ctrl.Config.EnvConfig.Upload.RatePerSecond,
		ctrl.Config.EnvConfig.Upload.RateBurst,
	).Middleware(ctrl.Infra.Logger)

	return &Middlewares{
		CORSMiddleware:            cors,
		UploadRateLimitMiddleware: uploadRateLimit,
	}, nil
}
