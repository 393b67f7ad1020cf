// Package router assembles the gin engine serving the library API.
package router

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"libraryhub/internal/http-api/handler"
	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/service"
	"libraryhub/internal/media"
)

type Options struct {
	Log                *zap.Logger
	RequestTimeout     time.Duration
	Media              *media.Resolver
	LoginRatePerMinute int
	// Ping backs GET /healthz; nil reports healthy.
	Ping func(ctx context.Context) error
}

// New mounts every route. Public catalog reads need no token, everything else
// goes through AuthMiddleware and, for admin routes, RequireAdmin.
func New(svc *service.Services, opts Options) *gin.Engine {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Media == nil {
		opts.Media = media.NewResolver("./media", "/media/")
	}
	handler.RegisterValidatorNames()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(log.Named("http")))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	r.GET("/healthz", healthz(opts.Ping))
	if prefix := opts.Media.Prefix(); strings.HasPrefix(prefix, "/") {
		r.Static(prefix, opts.Media.Root())
	}

	hopts := handler.Options{Log: log, Timeout: opts.RequestTimeout, Media: opts.Media}
	authn := middleware.AuthMiddleware(svc.Auth)
	limiter := middleware.NewRateLimiter(opts.LoginRatePerMinute)

	api := &r.RouterGroup
	handler.NewAuthHandler(svc.Auth, hopts).RegisterRoutes(api, authn, limiter.Middleware())
	handler.NewBookHandler(svc.Books, hopts).RegisterRoutes(api, authn)
	handler.NewCategoryHandler(svc.Categories, hopts).RegisterRoutes(api, authn)
	handler.NewBorrowHandler(svc.Borrows, hopts).RegisterRoutes(api, authn)
	handler.NewBookingHandler(svc.Bookings, hopts).RegisterRoutes(api, authn)
	handler.NewReviewHandler(svc.Reviews, hopts).RegisterRoutes(api, authn)
	handler.NewDonationHandler(svc.Donations, hopts).RegisterRoutes(api, authn)
	handler.NewNotificationHandler(svc.Notifications, hopts).RegisterRoutes(api, authn)
	handler.NewFeaturedHandler(svc.Featured, hopts).RegisterRoutes(api, authn)
	handler.NewSettingsHandler(svc.Settings, hopts).RegisterRoutes(api, authn)
	handler.NewDashboardHandler(svc.Auth, svc.Borrows, hopts).RegisterRoutes(api, authn)

	return r
}

func healthz(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
