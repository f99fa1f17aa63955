package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Mugdhazope/hemut-qna/internal/auth"
	"github.com/Mugdhazope/hemut-qna/internal/config"
	apperrors "github.com/Mugdhazope/hemut-qna/internal/errors"
	"github.com/Mugdhazope/hemut-qna/internal/qa"
	"github.com/Mugdhazope/hemut-qna/internal/websocket"
)

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	qa        *qa.Service
	auth      *auth.Service
	registry  *websocket.Registry
	db        postgresHealthChecker
	redis     *goredis.Client // nil when Redis is not configured
	startTime time.Time
}

func NewServer(cfg *config.Config, qaService *qa.Service, authService *auth.Service, registry *websocket.Registry, db postgresHealthChecker, redisClient *goredis.Client) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(correlationMiddleware())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		qa:        qaService,
		auth:      authService,
		registry:  registry,
		db:        db,
		redis:     redisClient,
		startTime: time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
