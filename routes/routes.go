package routes

import (
	"time"

	v1 "github.com/bugpredictor/api/v1"
	"github.com/bugpredictor/config"
	"github.com/bugpredictor/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter builds the HTTP engine with middlewares and the v1 API mounted
func SetupRouter(cfg *config.Config, svc v1.Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))

	// Multipart bodies above this are spooled to disk by net/http
	router.MaxMultipartMemory = 8 << 20

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "bugpredictor",
		})
	})

	api := router.Group("/api/v1")
	v1.RegisterRoutes(api, svc, v1.Options{
		CookieSecure: cfg.Auth.CookieSecure,
		TokenTTL:     cfg.Auth.TokenTTL,
	})

	return router
}

// corsConfig allows every origin without credentials for "*",
// otherwise exactly the listed origins with cookies
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}

	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
