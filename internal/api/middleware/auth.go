// internal/api/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"container-yard-api-server/internal/auth"
)

const claimsKey = "auth_claims"

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message, "code": code})
}

// Authenticate validates the bearer token and stores its claims in the
// context. The websocket endpoint may pass the token as ?token= instead,
// since browsers cannot set headers on the upgrade request.
func Authenticate(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				abort(c, http.StatusUnauthorized, "unauthorized", "Invalid token format")
				return
			}
		}
		if tokenString == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", "Authorization header is required")
			return
		}

		claims, err := tokens.ParseJWT(tokenString)
		if err != nil {
			abort(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// Claims returns what Authenticate stored, nil outside an authenticated route.
func Claims(c *gin.Context) *auth.JWTClaims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.JWTClaims)
	return claims
}

// Authorize lets through only the given roles.
func Authorize(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			abort(c, http.StatusInternalServerError, "internal_server_error", "User claims not found in context")
			return
		}
		for _, role := range allowedRoles {
			if role == claims.Role {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "forbidden", "You do not have permission to access this resource")
	}
}

// RequirePermission checks a single grant such as "update:containers".
func RequirePermission(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			abort(c, http.StatusInternalServerError, "internal_server_error", "User claims not found in context")
			return
		}
		if !claims.Can(perm) {
			abort(c, http.StatusForbidden, "forbidden", "Missing permission "+perm)
			return
		}
		c.Next()
	}
}
