package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-object-gallery/http/controller"
	middlewares "github.com/tnqbao/gau-object-gallery/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}

	r.Use(middles.CORSMiddleware)

	r.GET("/health", ctrl.Health)

	apiRoutes := r.Group("/api/v1")
	{
		objectRoutes := apiRoutes.Group("/objects")
		{
			objectRoutes.POST("", middles.UploadRateLimitMiddleware, ctrl.CreateObject)
			objectRoutes.GET("", ctrl.ListObjects)
			objectRoutes.GET("/:id", ctrl.GetObject)
			objectRoutes.DELETE("/:id", ctrl.DeleteObject)
		}

		apiRoutes.GET("/realtime", ctrl.Subscribe)
	}
	return r
}
