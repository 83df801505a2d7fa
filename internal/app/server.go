// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"marketplace_backend/internal/common"
	"marketplace_backend/internal/config"
	"marketplace_backend/internal/jobs"
	"marketplace_backend/internal/listing"
	"marketplace_backend/internal/message"
	"marketplace_backend/internal/middleware"
	"marketplace_backend/internal/notification"
	"marketplace_backend/internal/reservation"
	"marketplace_backend/internal/sale"
	"marketplace_backend/internal/shared"
	"marketplace_backend/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	// Jobs
	reservationCleanupJob *jobs.ReservationCleanupJob
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	tokenService shared.TokenService,
	userHandler *user.Handler,
	listingHandler *listing.Handler,
	reservationHandler *reservation.Handler,
	saleHandler *sale.Handler,
	messageHandler *message.Handler,
	notificationHandler *notification.Handler,
	reservationCleanupJob *jobs.ReservationCleanupJob,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	authMW := middleware.AuthMiddleware(tokenService, logger.Named("AuthMiddleware"))
	optionalAuthMW := middleware.OptionalAuthMiddleware(tokenService, logger.Named("OptionalAuthMiddleware"))
	adminRoleMW := middleware.RoleAuthMiddleware(common.RoleAdmin)

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Marketplace API is healthy!"})
	})

	v1 := router.Group("/api/v1")

	userHandler.RegisterRoutes(v1, authMW)
	listingHandler.RegisterRoutes(v1, authMW, optionalAuthMW)
	reservationHandler.RegisterRoutes(v1, authMW, optionalAuthMW, adminRoleMW)
	saleHandler.RegisterRoutes(v1, authMW, optionalAuthMW)
	messageHandler.RegisterRoutes(v1, authMW)

	notificationGroup := v1.Group("/notifications", authMW)
	notificationHandler.RegisterRoutes(notificationGroup)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:            httpServer,
		router:                router,
		cfg:                   cfg,
		logger:                logger,
		reservationCleanupJob: reservationCleanupJob,
	}, nil
}

func (s *Server) Start() error {
	if s.reservationCleanupJob != nil {
		if err := s.reservationCleanupJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start reservation cleanup job", zap.Error(err))
		}
	} else {
		s.logger.Info("Reservation cleanup job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped gracefully or an error occurred")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.reservationCleanupJob != nil {
		s.reservationCleanupJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
