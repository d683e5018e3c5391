package api

import (
	"Crosswire/internal/api/middleware"
	"Crosswire/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		networkGroup := apiGroup.Group("/networks")
		{
			networkGroup.GET("", group.NetworkHandler.List)
		}

		postGroup := apiGroup.Group("/posts")
		postGroup.Use(middleware.AuthMiddleware())
		{
			postGroup.GET("/upcoming", group.PostHandler.Upcoming)
		}

		metricsGroup := apiGroup.Group("/metrics")
		metricsGroup.Use(middleware.AuthMiddleware())
		{
			metricsGroup.GET("/:network_type/:post_id/latest", group.MetricHandler.Latest)
			metricsGroup.GET("/:network_type/:post_id/history", group.MetricHandler.History)
			metricsGroup.GET("/:network_type/:post_id/names", group.MetricHandler.Names)
		}

		monitorGroup := apiGroup.Group("/monitor")
		monitorGroup.Use(middleware.AuthMiddleware())
		{
			monitorGroup.POST("/poll", group.MonitorHandler.PollOnce)
		}
	}

	return r
}
