package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"fooddelivery/api/ctxutil"
	"fooddelivery/api/response"
	"fooddelivery/config"
	"fooddelivery/domain/shared"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims issued by the identity service.
type Claims struct {
	UserID any    `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware verifies the bearer token (HS256) and stores the caller.
// With auth disabled, X-User-ID and X-User-Role headers are trusted; this is
// meant for local runs only.
func AuthMiddleware(cfg *config.AuthConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return headerIdentity()
	}

	secret := []byte(cfg.Secret)
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			response.HandleError(c, errors.New("missing bearer token"), "authentication required", http.StatusUnauthorized)
			return
		}

		var claims Claims
		if _, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) { return secret, nil }); err != nil {
			response.HandleError(c, err, "invalid token", http.StatusUnauthorized)
			return
		}

		userID, err := claimUserID(claims.UserID)
		if err != nil {
			response.HandleError(c, err, "invalid token", http.StatusUnauthorized)
			return
		}
		role, err := parseRole(claims.Role)
		if err != nil {
			response.HandleError(c, err, "invalid token", http.StatusUnauthorized)
			return
		}

		ctxutil.SetCaller(c, userID, role)
		c.Next()
	}
}

func headerIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseInt(c.GetHeader("X-User-ID"), 10, 64)
		if err != nil || userID <= 0 {
			response.HandleError(c, errors.New("missing X-User-ID"), "authentication required", http.StatusUnauthorized)
			return
		}
		role, err := parseRole(c.GetHeader("X-User-Role"))
		if err != nil {
			response.HandleError(c, err, "invalid role", http.StatusUnauthorized)
			return
		}
		ctxutil.SetCaller(c, userID, role)
		c.Next()
	}
}

// RequireRole lets only the listed roles through.
func RequireRole(roles ...shared.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := ctxutil.LoggedInRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.HandleError(c, fmt.Errorf("role %q not allowed", role), "insufficient role", http.StatusForbidden)
	}
}

// claimUserID accepts a JSON number or a numeric string.
func claimUserID(v any) (int64, error) {
	switch id := v.(type) {
	case float64:
		if id > 0 && id == float64(int64(id)) {
			return int64(id), nil
		}
	case string:
		if n, err := strconv.ParseInt(id, 10, 64); err == nil && n > 0 {
			return n, nil
		}
	}
	return 0, fmt.Errorf("invalid userId claim: %v", v)
}

func parseRole(s string) (shared.Role, error) {
	if s == "" {
		return shared.RoleCustomer, nil
	}
	switch r := shared.Role(strings.ToUpper(s)); r {
	case shared.RoleCustomer, shared.RoleRestaurantOwner, shared.RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}
