package paas

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// Agent names this service in audit logs.
const Agent = "oppfinder-service"

const auditTimeout = 2 * time.Second

type ctxKey int

const clientCtxKey ctxKey = 1

func WithClient(ctx context.Context, c *Client) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, clientCtxKey, c)
}

func ClientFromContext(ctx context.Context) *Client {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(clientCtxKey).(*Client)
	return c
}

// InjectClientMiddleware puts p on every request context. A nil p is a no-op.
func InjectClientMiddleware(p *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p != nil && c.Request != nil {
			c.Request = c.Request.WithContext(WithClient(c.Request.Context(), p))
		}
		c.Next()
	}
}

func ClientFromGin(c *gin.Context) *Client {
	if c == nil || c.Request == nil {
		return nil
	}
	return ClientFromContext(c.Request.Context())
}

// LogBestEffort records an audit entry for a request. Failures are ignored.
func LogBestEffort(c *gin.Context, action, level string, details map[string]any) {
	logBestEffort(ClientFromGin(c), action, level, details)
}

// LogBestEffortCtx records an audit entry through the client carried by ctx, if any.
// Failures are ignored.
func LogBestEffortCtx(ctx context.Context, action, level string, details map[string]any) {
	logBestEffort(ClientFromContext(ctx), action, level, details)
}

func logBestEffort(p *Client, action, level string, details map[string]any) {
	if p == nil {
		return
	}
	// Detached so an audit write outlives a cancelled request.
	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()
	_ = p.CreateLog(ctx, CreateLogRequest{
		Agent:   Agent,
		Action:  action,
		Level:   level,
		Details: details,
	})
}
