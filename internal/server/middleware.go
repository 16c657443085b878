package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"lotmarket/internal/gateway"
	"lotmarket/internal/repository"
	"lotmarket/services/devapi/helpers"
	"lotmarket/utils"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	})
}

// RequireAuth verifies the bearer token and stores the profile name in the
// request context.
func RequireAuth(cfg TokenConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.JSONErrorMessage(c, http.StatusUnauthorized, "No authorization header was found")
			c.Abort()
			return
		}

		claims, err := VerifyToken(parts[1], cfg)
		if err != nil {
			utils.JSONErrorMessage(c, http.StatusUnauthorized, "Invalid authorization token")
			c.Abort()
			return
		}

		helpers.SetProfileName(c, claims.Name)
		c.Next()
	}
}

// RequireAPIKey checks that the provisioned-key header carries a key this
// server issued.
func RequireAPIKey(repo repository.MarketDB) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(gateway.APIKeyHeader)
		if key == "" || !repo.KnownAPIKey(key) {
			utils.JSONErrorMessage(c, http.StatusUnauthorized, "No API key header was found")
			c.Abort()
			return
		}
		c.Next()
	}
}
