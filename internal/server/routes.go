package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/ping", s.handlePing)
	s.echo.GET("/version", s.handleVersion)

	// Account routes
	s.echo.POST("/api/register", s.handleRegister)
	s.echo.POST("/api/login", s.handleLogin)

	// Question routes (submission and listing are anonymous; status
	// changes carry a bearer credential checked in the core)
	s.echo.POST("/api/questions", s.handleSubmitQuestion)
	s.echo.GET("/api/questions", s.handleListQuestions)
	s.echo.POST("/api/questions/:id/answer", s.handleAddAnswer)
	s.echo.PUT("/api/questions/:id/status", s.handleSetStatus)

	// Live feed
	s.echo.GET("/ws", s.handleWebSocket)
}
