package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agrimint/ussd-service/internal/config"
	"github.com/agrimint/ussd-service/internal/metrics"
	"github.com/agrimint/ussd-service/internal/middleware"
	"github.com/agrimint/ussd-service/internal/platform"
	"github.com/agrimint/ussd-service/internal/ratelimit"
	"github.com/agrimint/ussd-service/internal/ussd"
	"github.com/agrimint/ussd-service/internal/ussd/handler"
)

func setupHTTP(ctx context.Context, cfg config.Config, log *slog.Logger) (*gin.Engine, func() error, error) {

	store, cleanup, err := setupStore(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	m := metrics.New(prometheus.DefaultRegisterer)

	client := platform.NewClient(cfg.PlatformBaseURL, cfg.PlatformTimeout, m.ObserveDownstream)

	orchestrator := ussd.NewOrchestrator(
		store,
		platform.NewIdentityClient(client),
		platform.NewFederationClient(client),
		platform.NewWalletClient(client),
		ratelimit.New(cfg.LoginRatePerSec, cfg.LoginBurst, 10*time.Minute),
		log,
	)

	ussdHandler := handler.NewHandler(orchestrator)

	// ----------------------------
	// Router
	// ----------------------------

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ActionMetrics(m))

	ussdHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router, cleanup, nil
}
