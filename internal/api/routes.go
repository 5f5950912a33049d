package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/askmiles/miles-server/internal/api/handlers"
	"github.com/askmiles/miles-server/internal/config"
	"github.com/askmiles/miles-server/internal/metrics"
	"github.com/askmiles/miles-server/internal/services"
)

func SetupRouter(cfg *config.Config, data *services.CardDataService, users *services.UserService, transfers *services.TransferService) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowCredentials = false
	router.Use(cors.New(corsConfig))

	router.Use(requestID())
	router.Use(recordMetrics())

	cardHandler := handlers.NewCardHandler(data)
	transferHandler := handlers.NewTransferHandler(transfers)
	userHandler := handlers.NewUserHandler(users)

	api := router.Group("/api")
	{
		cards := api.Group("/cards")
		{
			cards.GET("/search", cardHandler.SearchCards)
			cards.GET("/info", cardHandler.GetCardInfo)
			cards.GET("/top-offers", cardHandler.GetTopOffers)
			cards.GET("/benefits", cardHandler.SearchBenefits)
		}

		xfers := api.Group("/transfers")
		{
			xfers.GET("/partners", transferHandler.LookupPartners)
			xfers.GET("/bonuses", transferHandler.GetBonuses)
		}

		user := api.Group("/user")
		{
			user.GET("", userHandler.GetUserData)
			user.GET("/wallet", userHandler.GetWallet)
			user.POST("/wallet", userHandler.AddWalletCard)
			user.DELETE("/wallet", userHandler.RemoveWalletCard)
			user.GET("/valuations", userHandler.GetValuations)
			user.PUT("/valuations", userHandler.SetValuation)
			user.POST("/credits", userHandler.AddCredit)
			user.DELETE("/credits", userHandler.RemoveCredit)
		}
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"cards":  data.CardCount(),
		})
	})

	return router
}

// requestID tags each request with an id for log correlation.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func recordMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
