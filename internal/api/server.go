package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/voxchat/voxbot/internal/auth"
)

// Server exposes the login handshake over HTTP: token issuance, status
// polling and session endpoints. No dashboard pages live here.
type Server struct {
	srv  *http.Server
	auth *auth.Service
}

func NewServer(addr string, authService *auth.Service) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{auth: authService}
	s.routes(router)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Start(_ context.Context) error {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("api server failed")
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) routes(router *gin.Engine) {
	router.GET("/healthz", s.handleHealth)

	group := router.Group("/api")
	group.POST("/login", s.handleLogin)
	group.GET("/login/:token", s.handleLoginStatus)

	authorized := group.Group("", s.requireSession())
	authorized.GET("/session", s.handleSession)
	authorized.POST("/logout", s.handleLogout)
}
