// Package ctxutil reads request-scoped values placed in the gin context by
// the middleware chain.
package ctxutil

import (
	"context"

	"fooddelivery/api/response"
	"fooddelivery/domain/shared"
	"fooddelivery/infrastructure/persistence"

	"github.com/gin-gonic/gin"
)

const (
	UserIDKey = "auth_user_id"
	RoleKey   = "auth_role"
)

// WithRequestID returns the request context carrying the request id, so GORM
// statements logged below the controller can be correlated.
func WithRequestID(c *gin.Context) context.Context {
	return persistence.ContextWithRequestID(c.Request.Context(), response.GetRequestID(c))
}

func RequestIDFromContext(ctx context.Context) string {
	return persistence.RequestIDFromContext(ctx)
}

// SetCaller stores the authenticated identity.
func SetCaller(c *gin.Context, userID int64, role shared.Role) {
	c.Set(UserIDKey, userID)
	c.Set(RoleKey, role)
}

// LoggedInUserID returns the caller's user id, false when unauthenticated.
func LoggedInUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

// LoggedInRole returns the caller's role.
func LoggedInRole(c *gin.Context) shared.Role {
	if v, ok := c.Get(RoleKey); ok {
		if role, ok := v.(shared.Role); ok {
			return role
		}
	}
	return ""
}

// Actor returns the caller as a domain actor.
func Actor(c *gin.Context) (shared.Actor, bool) {
	id, ok := LoggedInUserID(c)
	if !ok {
		return shared.Actor{}, false
	}
	return shared.Actor{UserID: id, Role: LoggedInRole(c)}, true
}
