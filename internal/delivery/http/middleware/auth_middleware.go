package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"portfolio-backend/internal/delivery/http/response"
	"portfolio-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AdminRole is the role claim required on admin tokens
const AdminRole = "admin"

// AdminSubjectKey holds the token subject for downstream handlers
const AdminSubjectKey = "AdminSubject"

// AdminAuthMiddleware accepts HS256 bearer tokens signed with secret whose
// "role" claim is admin.
func AdminAuthMiddleware(secret string, events *security.SecurityLogger) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	reject := func(c *gin.Context, code int, message, reason string) {
		events.LogUnauthorizedAccess(c.Request.Context(), c.ClientIP(), requestID(c), reason)
		response.Error(c, code, message, nil)
		c.Abort()
	}

	return func(c *gin.Context) {
		if secret == "" {
			reject(c, http.StatusServiceUnavailable, "Admin access is not configured", "admin_secret_missing")
			return
		}

		tokenString, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || tokenString == "" {
			reject(c, http.StatusUnauthorized, "Authorization header required", "missing_token")
			return
		}

		claims := jwt.MapClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			reject(c, http.StatusUnauthorized, "Invalid token", "invalid_token")
			return
		}

		if role, _ := claims["role"].(string); role != AdminRole {
			reject(c, http.StatusForbidden, "Admin role required", "insufficient_role")
			return
		}

		sub, _ := claims.GetSubject()
		c.Set(AdminSubjectKey, sub)
		c.Next()
	}
}
