package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mmo1994/meetsync/pkg/errors"
	"github.com/mmo1994/meetsync/pkg/response"
)

const (
	// CtxUserIDKey is the gin context key holding the caller's user ID.
	CtxUserIDKey = "userID"

	// UserIDHeader carries the authenticated user's ID, set by the
	// fronting auth layer. Requests reaching this service are assumed to
	// have passed authentication upstream.
	UserIDHeader = "X-User-ID"
)

// Identity extracts the caller's identity from the trusted header and
// propagates it into the request context. Requests without one are rejected.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if userID == "" {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxUserIDKey, userID)
		c.Next()
	}
}
