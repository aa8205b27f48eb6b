package httpapi

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/researchdt/internal/logging"
	"github.com/dmitrijs2005/researchdt/internal/server/apierror"
	"github.com/gin-gonic/gin"
)

// Normalizer turns every failure raised while handling a request into the
// error envelope. Handlers report failures with c.Error and return.
type Normalizer struct {
	logger logging.Logger
}

func NewNormalizer(logger logging.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Middleware must run inside the request logger and metrics so they observe
// the status of the envelope it writes, including for recovered panics.
func (n *Normalizer) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				n.write(c, fmt.Errorf("panic: %v", r))
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			n.write(c, c.Errors.Last().Err)
		}
	}
}

func (n *Normalizer) write(c *gin.Context, err error) {
	apiErr, known := apierror.Normalize(err)
	if !known {
		n.logger.Error(c.Request.Context(), "unhandled error",
			"method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	} else if apiErr.Status >= http.StatusInternalServerError {
		n.logger.Error(c.Request.Context(), "request failed", "error", err)
	}
	c.JSON(apiErr.Status, apiErr.Envelope())
}

// fail records err for the normalizer and stops the chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
