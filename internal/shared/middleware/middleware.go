package middleware

import (
	"context"
	"net/http"
	"strings"

	"busline/internal/shared/config"
	"busline/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// Context keys set by JWTAuth
const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
)

type tokenKey struct{}

// WithToken stores the caller's bearer token so outbound backend calls can
// forward it.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the bearer token stored by WithToken
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// JWTAuth creates a JWT authentication middleware. Tokens are issued by
// the booking backend; the gateway only verifies them.
func JWTAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, response.StatusError, http.StatusUnauthorized, "Authorization header is required", nil, nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.RespondJSON(c, response.StatusError, http.StatusUnauthorized, "authorization header format must be Bearer {token}", nil, nil)
			c.Abort()
			return
		}

		tokenString := parts[1]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})

		if err != nil || !token.Valid {
			response.RespondJSON(c, response.StatusError, http.StatusUnauthorized, "invalid or expired token", nil, nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.RespondJSON(c, response.StatusError, http.StatusUnauthorized, "invalid token claims", nil, nil)
			c.Abort()
			return
		}

		userID := claimString(claims, "user_id", "id", "sub")
		if userID == "" {
			response.RespondJSON(c, response.StatusError, http.StatusUnauthorized, "token has no subject", nil, nil)
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextUserRole, strings.ToUpper(claimString(claims, "role")))
		c.Request = c.Request.WithContext(WithToken(c.Request.Context(), tokenString))

		c.Next()
	}
}

// claimString returns the first non-empty string claim among names
func claimString(claims jwt.MapClaims, names ...string) string {
	for _, name := range names {
		if v, ok := claims[name].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// RequireRoles middleware checks if user has any of the required roles
func RequireRoles(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(ContextUserRole)
		if userRole == "" {
			response.RespondJSON(c, response.StatusError, http.StatusUnauthorized, "user role not found in context", nil, nil)
			c.Abort()
			return
		}

		for _, role := range requiredRoles {
			if userRole == role {
				c.Next()
				return
			}
		}

		response.RespondJSON(c, response.StatusError, http.StatusForbidden, "Insufficient permissions", nil, nil)
		c.Abort()
	}
}

// UserID returns the authenticated session owner
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
