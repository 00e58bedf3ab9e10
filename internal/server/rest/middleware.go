package rest

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/marketplace/internal/common"
	"github.com/dmitrijs2005/marketplace/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	userIDKey    = "userID"
	requestIDKey = "requestID"
)

// TokenDecoder resolves an access token to a user id.
type TokenDecoder interface {
	DecodeAccessToken(token string) (int64, error)
}

// RequestObserver records served requests.
type RequestObserver interface {
	ObserveRequest(path, method, code string, elapsed time.Duration)
}

// UserID returns the id stored by Authenticated.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// RequestLogger assigns a request id and writes one access log line per
// request: 5xx at Error, 4xx at Warn, the rest at Info.
func RequestLogger(l logging.Logger) gin.HandlerFunc {
	l = l.With("module", "http_access")

	return func(c *gin.Context) {
		start := time.Now()
		requestID := strings.TrimSpace(c.GetHeader(common.RequestIDHeaderName))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(common.RequestIDHeaderName, requestID)

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"request_id", requestID,
			"status", status,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}

		ctx := c.Request.Context()
		switch {
		case status >= http.StatusInternalServerError:
			l.Error(ctx, "http_request", args...)
		case status >= http.StatusBadRequest:
			l.Warn(ctx, "http_request", args...)
		default:
			l.Info(ctx, "http_request", args...)
		}
	}
}

// Authenticated requires "Authorization: Bearer <access token>" and stores
// the token's user id for UserID.
func Authenticated(d TokenDecoder) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], common.BearerScheme) || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, messageBody("Unauthorized"))
			return
		}

		userID, err := d.DecodeAccessToken(strings.TrimSpace(parts[1]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, messageBody("Unauthorized"))
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// Metrics reports every request to o under its route pattern, so path
// parameters do not explode label cardinality.
func Metrics(o RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		o.ObserveRequest(path, c.Request.Method, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
