package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"portfolio-backend/internal/delivery/http/response"
	"portfolio-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

const (
	// CSRFTokenCookieName is the name of the cookie that stores the CSRF token
	CSRFTokenCookieName = "csrf_token"
	// CSRFTokenHeaderName carries the token on requests and echoes it on responses
	CSRFTokenHeaderName = "X-CSRF-Token"
	// CSRFTokenLength is the length of the generated token in bytes (32 bytes = 64 hex chars)
	CSRFTokenLength = 32
	// CSRFTokenExpiry is how long the token is valid
	CSRFTokenExpiry = 24 * time.Hour
)

// CSRFConfig controls the token cookie attributes
type CSRFConfig struct {
	// Secure marks the cookie Secure and SameSite=None for a cross-origin frontend
	Secure bool
	// Events receives violations; nil disables event logging
	Events *security.SecurityLogger
}

// generateCSRFToken creates a cryptographically secure random token
func generateCSRFToken() (string, error) {
	bytes := make([]byte, CSRFTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// CSRFMiddleware implements the double-submit cookie pattern for routes that
// act on the contact session cookie.
//
// Every response carries the current token in the X-CSRF-Token header, since a
// frontend on another origin cannot read the API's cookies. Mutating requests
// must send that value back in the same header.
func CSRFMiddleware(cfg CSRFConfig) gin.HandlerFunc {
	sameSite := http.SameSiteLaxMode
	if cfg.Secure {
		sameSite = http.SameSiteNoneMode
	}

	return func(c *gin.Context) {
		csrfCookie, err := c.Cookie(CSRFTokenCookieName)

		// Generate new token if none exists
		if err != nil || csrfCookie == "" {
			newToken, err := generateCSRFToken()
			if err != nil {
				response.Error(c, http.StatusInternalServerError, "Failed to generate security token", nil)
				c.Abort()
				return
			}

			c.SetSameSite(sameSite)
			c.SetCookie(
				CSRFTokenCookieName,
				newToken,
				int(CSRFTokenExpiry.Seconds()),
				"/",
				"",         // Domain (empty = current domain)
				cfg.Secure, // Secure (HTTPS only)
				true,       // HttpOnly, the header echo is the readable copy
			)
			csrfCookie = newToken
		}
		c.Header(CSRFTokenHeaderName, csrfCookie)

		// For safe methods, no validation needed
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		headerToken := c.GetHeader(CSRFTokenHeaderName)
		if headerToken == "" {
			cfg.Events.LogCSRFViolation(c.Request.Context(), c.ClientIP(), requestID(c), c.FullPath(), "missing_token")
			response.Error(c, http.StatusForbidden, "Missing CSRF token", nil)
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(headerToken), []byte(csrfCookie)) != 1 {
			cfg.Events.LogCSRFViolation(c.Request.Context(), c.ClientIP(), requestID(c), c.FullPath(), "token_mismatch")
			response.Error(c, http.StatusForbidden, "Invalid CSRF token", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
