package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/castlab/relaygate/internal/app/orch"
	"github.com/castlab/relaygate/internal/config"
)

func SetupRouter(cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	// for probes and Prometheus scraping
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := &negotiationHandlers{orch: o}

	r.POST("/source", h.broadcastSource)
	r.POST("/sessions/:sessionId/sink", h.broadcastSink)

	simulcast := r.Group("/simulcast")
	{
		simulcast.POST("/source", h.simulcastSource)
		simulcast.POST("/sessions/:sessionId/sink", h.simulcastSink)
	}

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")
	return r
}
