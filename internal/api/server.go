package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"bookmyseat/internal/cache"
	"bookmyseat/internal/config"
	"bookmyseat/internal/database"
	"bookmyseat/internal/external"
	"bookmyseat/internal/handlers"
	"bookmyseat/internal/logger"
	"bookmyseat/internal/messaging"
	"bookmyseat/internal/middleware"
	"bookmyseat/internal/repository"
	"bookmyseat/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP API process: database, messaging and payment clients
// plus the gin router wired over them.
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
	repos    *repository.Repositories
}

func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// NATS and Valkey are optional: without NATS events are dropped, without
	// Valkey every auth check hits the users table.
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		slog.Warn("NATS unavailable, booking events disabled", "error", err)
		natsClient = nil
	}

	valkeyClient, err := cache.NewValkeyClient()
	if err != nil {
		slog.Warn("Valkey unavailable, auth cache disabled", "error", err)
		valkeyClient = nil
	}

	paymentClient := external.NewPaymentClient(cfg.Payment)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, natsClient, paymentClient, cfg.Currency, cfg.Reservation.HoldTimeout)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
		repos:    repos,
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	h := handlers.New(s.services)

	api := s.router.Group("/api")
	api.Use(middleware.BasicAuth(s.repos.Users, s.valkey))
	{
		shows := api.Group("/shows")
		{
			shows.POST("", h.CreateShow)
			shows.GET("/:id", h.GetShow)
		}

		seats := api.Group("/seats")
		{
			seats.GET("", h.ListSeats)
		}

		bookings := api.Group("/bookings")
		{
			bookings.POST("", h.CreateBooking)
			bookings.GET("", h.ListBookings)
			bookings.PATCH("/confirm", h.ConfirmBooking)
			bookings.PATCH("/cancel", h.CancelBooking)
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) healthCheck(c *gin.Context) {
	if err := s.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"error":  "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "bookmyseat-api",
		"version": "1.0.0",
	})
}

// Services exposes the service layer for background jobs.
func (s *Server) Services() *service.Services {
	return s.services
}

// EventPublisher returns the NATS client; nil-safe for callers, publishing
// on a nil client is a no-op.
func (s *Server) EventPublisher() *messaging.NATSClient {
	return s.nats
}

func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter returns the router for testing
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			slog.Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
