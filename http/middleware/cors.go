package middlewares

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-object-gallery/config"
)

func CORSMiddleware(cfg *config.EnvConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	origins := make([]string, 0)
	for _, domain := range strings.Split(cfg.CORS.AllowDomains, ",") {
		domain = strings.TrimRight(strings.TrimSpace(domain), "/")
		if domain == "*" {
			corsConfig.AllowAllOrigins = true
			origins = nil
			break
		}
		if domain != "" {
			origins = append(origins, domain)
		}
	}
	if cfg.CORS.GlobalDomain != "" && !corsConfig.AllowAllOrigins {
		origins = append(origins, "https://"+cfg.CORS.GlobalDomain)
	}

	if !corsConfig.AllowAllOrigins {
		if len(origins) == 0 {
			corsConfig.AllowAllOrigins = true
		} else {
			corsConfig.AllowOrigins = origins
			corsConfig.AllowCredentials = true
		}
	}

	return cors.New(corsConfig)
}
