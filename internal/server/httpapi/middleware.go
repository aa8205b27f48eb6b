package httpapi

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/researchdt/internal/common"
	"github.com/dmitrijs2005/researchdt/internal/logging"
	"github.com/dmitrijs2005/researchdt/internal/server/metrics"
	"github.com/dmitrijs2005/researchdt/internal/server/models"
	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// RequestLogger logs HTTP request/response metadata.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"client_ip", c.ClientIP(),
			"latency", time.Since(start).String(),
		)
	}
}

// RequestMetrics records request counts and latency per route template.
func RequestMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// Authenticator verifies access tokens.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.TokenClaims, error)
}

// RequireAuth rejects requests without a valid Bearer access token and
// stores the verified claims on the context.
func RequireAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], common.BearerScheme) || strings.TrimSpace(parts[1]) == "" {
			fail(c, common.ErrNotAuthenticated)
			return
		}

		claims, err := a.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			fail(c, err)
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

func claimsFrom(c *gin.Context) (*models.TokenClaims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*models.TokenClaims)
	return claims, ok
}
