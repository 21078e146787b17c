package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/voxchat/voxbot/internal/auth"
)

const sessionContextKey = "session"

func bearerCredential(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// requireSession rejects requests without a valid session credential. The
// denial is deliberately uniform, the caller learns nothing about why.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := s.auth.ValidateSession(c.Request.Context(), bearerCredential(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(sessionContextKey, session)
		c.Next()
	}
}

func currentSession(c *gin.Context) *auth.SessionInfo {
	value, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	session, ok := value.(*auth.SessionInfo)
	if !ok {
		return nil
	}
	return session
}
