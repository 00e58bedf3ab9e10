package rest

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/marketplace/internal/logging"
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Handler        *Handler
	Tokens         TokenDecoder
	Logger         logging.Logger
	Requests       RequestObserver
	MetricsHandler http.Handler
	LoginLimiter   *RateLimiter
	TrustedProxies []string
}

// NewRouter wires routes and middleware. Requests and MetricsHandler are
// optional. Forwarding headers are honoured only from TrustedProxies; with
// none, the client IP is the TCP peer address.
func NewRouter(d RouterDeps) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery())
	r.Use(RequestLogger(d.Logger))
	if d.Requests != nil {
		r.Use(Metrics(d.Requests))
	}

	r.GET("/healthz", d.Handler.Health)
	if d.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(d.MetricsHandler))
	}

	api := r.Group("/api/users")
	{
		api.POST("/login", d.LoginLimiter.Handler(), d.Handler.Login)
		api.POST("/registration", d.Handler.Register)
		api.POST("/token/refresh", d.Handler.RefreshToken)

		me := api.Group("/me", Authenticated(d.Tokens))
		{
			me.GET("", d.Handler.Me)
			me.POST("/image-upload-url", d.Handler.ImageUploadURL)
		}
	}

	return r, nil
}
