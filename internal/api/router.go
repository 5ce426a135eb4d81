package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/carelinkhq/carelink/internal/app"
	"github.com/carelinkhq/carelink/internal/handlers"
	"github.com/carelinkhq/carelink/internal/middleware"
	"github.com/carelinkhq/carelink/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers core routes.
// The admission service is constructed by the caller so that the HTTP triggers
// and the cron runner share one instance.
func NewRouter(db *gorm.DB, cfg *app.Config, admissionSvc *services.AdmissionService) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if admissionSvc == nil {
		return nil, fmt.Errorf("admission service must be provided")
	}

	matchSvc, err := services.NewMatchService(db)
	if err != nil {
		return nil, err
	}
	waitlistSvc, err := services.NewWaitlistService(db)
	if err != nil {
		return nil, err
	}
	providerSvc, err := services.NewProviderService(db)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.NoRoute(middleware.NotFoundHandler)

	r.GET("/health", handlers.Health())

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	matchHandler := handlers.NewMatchHandler(matchSvc)
	waitlistHandler := handlers.NewWaitlistHandler(waitlistSvc, providerSvc)
	liquidityHandler := handlers.NewLiquidityHandler(admissionSvc)

	api := r.Group("/api")
	{
		api.POST("/matches", matchHandler.Select)

		waitlist := api.Group("/waitlist")
		{
			waitlist.POST("", waitlistHandler.Join)
			waitlist.GET("/invites/:token", waitlistHandler.LookupInvite)
			waitlist.POST("/redeem", waitlistHandler.Redeem)
		}

		admin := api.Group("/admin/liquidity")
		{
			admin.POST("/admission-pass", liquidityHandler.RunAdmissionPass)
			admin.POST("/expiry-sweep", liquidityHandler.RunExpirySweep)
		}
	}

	return r, nil
}
