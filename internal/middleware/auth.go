package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
	"github.com/noah-isme/edu-admin-gateway/internal/session"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
	"github.com/noah-isme/edu-admin-gateway/pkg/response"
)

// ContextUserKey is the gin context key storing the resolved session.
const ContextUserKey = "currentUser"

// Auth protects routes by requiring a valid bearer token.
func Auth(resolver *session.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		sess, err := resolver.Resolve(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, sess)
		c.Next()
	}
}

// Session returns the session stored by Auth, or nil when the route is
// unprotected.
func Session(c *gin.Context) *models.Session {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	sess, _ := value.(*models.Session)
	return sess
}
