package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// RequireRole guards a route group behind a bearer token carrying one of the
// allowed roles. The role claim is the only capability check in the system;
// swapping the rule means swapping this middleware.
func RequireRole(secret string, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseBearerToken(c.GetHeader("Authorization"), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		role, _ := claims["role"].(string)
		if !roleAllowed(role, allowedRoles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}

// AdminOnly is the back-office guard.
func AdminOnly(secret string) gin.HandlerFunc {
	return RequireRole(secret, "admin")
}

func roleAllowed(role string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

func parseBearerToken(header, secret string) (jwt.MapClaims, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return nil, errors.New("missing token")
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errors.New("invalid token format")
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
