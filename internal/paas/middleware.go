package paas

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ProjectHeader = "X-Paas-Project"
	RoleHeader    = "X-Paas-Role"
)

// AuthOptions controls the bearer guard.
type AuthOptions struct {
	// Disabled lets every request through (local development).
	Disabled bool
	// RequireGateway additionally demands the project header the gateway sets.
	RequireGateway bool
}

// AuthOptionsFromEnv reads OF_AUTH_DISABLED and OF_REQUIRE_GATEWAY.
func AuthOptionsFromEnv() AuthOptions {
	return AuthOptions{
		Disabled:       envTrue("OF_AUTH_DISABLED"),
		RequireGateway: envTrue("OF_REQUIRE_GATEWAY"),
	}
}

// RequireBearerMiddleware guards with options taken from the environment.
func RequireBearerMiddleware() gin.HandlerFunc {
	return RequireBearer(AuthOptionsFromEnv())
}

// RequireBearer rejects /api, /swagger and /docs requests without a bearer token.
// The token itself is validated by the gateway in front of the service.
func RequireBearer(opts AuthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if opts.Disabled || !guarded(c.Request.URL.Path) {
			c.Next()
			return
		}
		auth := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "missing bearer token"})
			return
		}
		if opts.RequireGateway && strings.TrimSpace(c.GetHeader(ProjectHeader)) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "missing " + ProjectHeader})
			return
		}
		c.Next()
	}
}

func guarded(path string) bool {
	return strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/swagger") || path == "/docs"
}

// PaaSWriteAuditMiddleware records every non-read /api request in the platform audit
// log after it completes. OF_PAAS_AGENT overrides the agent name.
func PaaSWriteAuditMiddleware(p *Client, logger *zap.Logger) gin.HandlerFunc {
	if p == nil {
		return func(c *gin.Context) { c.Next() }
	}
	agent := strings.TrimSpace(os.Getenv("OF_PAAS_AGENT"))
	if agent == "" {
		agent = Agent
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if !isWrite(c.Request.Method) || !strings.HasPrefix(c.Request.URL.Path, "/api/") {
			return
		}
		status := c.Writer.Status()
		details := map[string]any{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"route":    c.FullPath(),
			"status":   status,
			"duration": time.Since(start).String(),
			"project":  strings.TrimSpace(c.GetHeader(ProjectHeader)),
			"role":     strings.TrimSpace(c.GetHeader(RoleHeader)),
		}
		if last := c.Errors.Last(); last != nil {
			details["error"] = last.Error()
		}

		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()
		err := p.CreateLog(ctx, CreateLogRequest{
			Agent:   agent,
			Action:  "oppfinder_http_write",
			Level:   levelFromStatus(status),
			Details: details,
		})
		if err != nil && logger != nil {
			logger.Debug("paas audit log failed", zap.Error(err))
		}
	}
}

func isWrite(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

func levelFromStatus(status int) string {
	switch {
	case status >= 500:
		return "error"
	case status >= 400:
		return "warn"
	default:
		return "info"
	}
}

func envTrue(key string) bool {
	v := strings.TrimSpace(os.Getenv(key))
	return strings.EqualFold(v, "true") || v == "1"
}
