package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aeeconecta/aee-service/internal/models"
	"github.com/aeeconecta/aee-service/internal/services"
	"github.com/aeeconecta/aee-service/internal/session"
)

const (
	sessionKey      = "session"
	sessionTokenKey = "session_token"
)

// SessionAuthMiddleware resolves bearer tokens to sessions.
type SessionAuthMiddleware struct {
	auth services.AuthService
}

func NewSessionAuthMiddleware(auth services.AuthService) *SessionAuthMiddleware {
	return &SessionAuthMiddleware{auth: auth}
}

// AuthMiddleware requires a valid session token in any state.
func (m *SessionAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "authorization header missing",
			})
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "invalid authorization header format",
			})
			return
		}

		sess, err := m.auth.Authenticate(c.Request.Context(), tokenParts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Sessão expirada. Entre novamente.",
			})
			return
		}

		c.Set(sessionKey, sess)
		c.Set(sessionTokenKey, tokenParts[1])
		c.Set("user_id", sess.RF)
		c.Set("user_role", sess.Role)
		c.Next()
	}
}

// RequireLoggedIn rejects sessions still waiting for a first password.
func (m *SessionAuthMiddleware) RequireLoggedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := GetSessionFromContext(c)
		if err != nil || !sess.IsLoggedIn() {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "login not completed",
			})
			return
		}
		c.Next()
	}
}

// RequirePermissionMiddleware rejects sessions whose role lacks p.
func (m *SessionAuthMiddleware) RequirePermissionMiddleware(p models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := GetSessionFromContext(c)
		if err != nil || !sess.Can(p) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: fmt.Sprintf("insufficient permissions, required: %s", p),
			})
			return
		}
		c.Next()
	}
}

// GetSessionFromContext returns the session set by AuthMiddleware.
func GetSessionFromContext(c *gin.Context) (*session.Session, error) {
	value, exists := c.Get(sessionKey)
	if !exists {
		return nil, fmt.Errorf("session not found in context")
	}

	sess, ok := value.(*session.Session)
	if !ok {
		return nil, fmt.Errorf("invalid session type in context")
	}
	return sess, nil
}

func getSessionToken(c *gin.Context) string {
	return c.GetString(sessionTokenKey)
}
