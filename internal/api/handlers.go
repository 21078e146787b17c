package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	apperrors "github.com/voxchat/voxbot/internal/errors"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleLogin(c *gin.Context) {
	source := fmt.Sprintf("%s %s", c.ClientIP(), c.Request.UserAgent())
	grant, err := s.auth.GenerateLoginToken(c.Request.Context(), source)
	if err != nil {
		log.WithError(err).Error("failed to generate login token")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      grant.Token,
		"expires_at": grant.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleLoginStatus(c *gin.Context) {
	snapshot, err := s.auth.CheckTokenStatus(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown token"})
			return
		}
		log.WithError(err).Error("failed to check token status")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
		return
	}

	resp := gin.H{"status": snapshot.Status}
	if snapshot.SessionCredential != "" {
		resp["session_credential"] = snapshot.SessionCredential
		resp["user_id"] = snapshot.UserID
		resp["username"] = snapshot.Username
		resp["first_name"] = snapshot.FirstName
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSession(c *gin.Context) {
	session := currentSession(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":     session.UserID,
		"username":    session.Username,
		"first_name":  session.FirstName,
		"verified_at": session.VerifiedAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	if err := s.auth.InvalidateSession(c.Request.Context(), bearerCredential(c)); err != nil {
		log.WithError(err).Error("failed to invalidate session")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
		return
	}
	c.Status(http.StatusNoContent)
}
