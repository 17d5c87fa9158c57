package main

import (
	"log/slog"
	"net/http"
	"os"

	"cafe-backend/config"
	"cafe-backend/consumers"
	"cafe-backend/controllers"
	"cafe-backend/database"
	"cafe-backend/middlewares"
	"cafe-backend/models"
	"cafe-backend/rabbitmq"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.LoadConfig()
	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required; refusing to start with no signing secret")
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	// The broker is optional: without it the service still takes orders,
	// just without kitchen events.
	var publisher controllers.EventPublisher
	rmq, err := rabbitmq.NewRabbitMQ(cfg)
	if err != nil {
		logger.Warn("rabbitmq unavailable, order events disabled", "error", err)
	} else {
		defer rmq.Close()
		if err := rmq.SetupQueues(); err != nil {
			logger.Error("failed to set up rabbitmq queues", "error", err)
			os.Exit(1)
		}
		publisher = rmq

		consumer := consumers.NewOrderConsumer(db, logger)
		if err := consumer.Start(rmq.Channel, cfg); err != nil {
			logger.Error("failed to start order consumer", "error", err)
			os.Exit(1)
		}
	}

	menuCtl := controllers.NewMenuController(db, logger)
	orderCtl := controllers.NewOrderController(db, publisher, logger, cfg.PrepCheckDelay)
	authCtl := controllers.NewAuthController(db, cfg.JWTSecret, cfg.TokenTTL, logger)

	r := gin.Default()
	r.Use(middlewares.RequestID())
	r.Use(middlewares.PrometheusMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Cafe backend is running")
	})

	r.GET("/menu", menuCtl.GetMenu)
	r.POST("/login", authCtl.Login)

	authed := r.Group("")
	authed.Use(middlewares.AuthMiddleware(cfg.JWTSecret))
	{
		authed.POST("/orders", orderCtl.CreateOrder)
		authed.GET("/me", authCtl.GetProfile)
		authed.PUT("/me", authCtl.UpdateProfile)
		authed.PUT("/change-password", authCtl.ChangePassword)

		staff := authed.Group("")
		staff.Use(middlewares.RequireRole(models.RoleStaff))
		{
			staff.GET("/orders", orderCtl.ListOrders)
			staff.PUT("/orders/status", orderCtl.UpdateStatus)
		}
	}

	logger.Info("cafe backend starting", "addr", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
