package http

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/castlab/relaygate/internal/app/orch"
	"github.com/castlab/relaygate/internal/core"
)

var negotiationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "relaygate_negotiations_total",
	Help: "Negotiation requests by operation and outcome.",
}, []string{"operation", "outcome"})

type negotiationHandlers struct {
	orch *orch.Orchestrator
}

type offerRequest struct {
	Offer string `json:"offer" binding:"required"`
}

type simulcastSinkRequest struct {
	Offer   string `json:"offer" binding:"required"`
	TrackID string `json:"track_id" binding:"required"`
	Rid     string `json:"rid" binding:"required"`
}

type publishResponse struct {
	SessionID string              `json:"session_id"`
	Answer    string              `json:"answer"`
	Tracks    map[string][]string `json:"tracks,omitempty"`
}

type sinkResponse struct {
	Answer string `json:"answer"`
}

type errorResponse struct {
	Message string `json:"message"`
	Stack   string `json:"stack"`
}

func (h *negotiationHandlers) broadcastSource(c *gin.Context) {
	h.source(c, core.ModeBroadcast)
}

func (h *negotiationHandlers) simulcastSource(c *gin.Context) {
	h.source(c, core.ModeSimulcast)
}

func (h *negotiationHandlers) source(c *gin.Context, mode core.PublishMode) {
	op := mode.String() + "_source"

	var req offerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, op, http.StatusBadRequest, errors.New("offer must be provided as a string"))
		return
	}

	res, err := h.orch.Publish(mode, req.Offer)
	if err != nil {
		writeError(c, op, statusFor(err), err)
		return
	}

	negotiationsTotal.WithLabelValues(op, "ok").Inc()
	c.JSON(http.StatusOK, publishResponse{
		SessionID: string(res.SessionID),
		Answer:    res.Answer,
		Tracks:    res.Tracks,
	})
}

func (h *negotiationHandlers) broadcastSink(c *gin.Context) {
	const op = "broadcast_sink"

	var req offerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, op, http.StatusBadRequest, errors.New("offer must be provided as a string"))
		return
	}

	res, err := h.orch.Subscribe(orch.SinkRequest{
		Mode:      core.ModeBroadcast,
		SessionID: core.SessionID(c.Param("sessionId")),
		RawOffer:  req.Offer,
	})
	if err != nil {
		writeError(c, op, statusFor(err), err)
		return
	}

	negotiationsTotal.WithLabelValues(op, "ok").Inc()
	c.JSON(http.StatusOK, sinkResponse{Answer: res.Answer})
}

func (h *negotiationHandlers) simulcastSink(c *gin.Context) {
	const op = "simulcast_sink"

	var req simulcastSinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, op, http.StatusBadRequest, errors.New("offer, track_id and rid must be provided as strings"))
		return
	}

	res, err := h.orch.Subscribe(orch.SinkRequest{
		Mode:      core.ModeSimulcast,
		SessionID: core.SessionID(c.Param("sessionId")),
		TrackID:   req.TrackID,
		Rid:       req.Rid,
		RawOffer:  req.Offer,
	})
	if err != nil {
		writeError(c, op, statusFor(err), err)
		return
	}

	negotiationsTotal.WithLabelValues(op, "ok").Inc()
	c.JSON(http.StatusOK, sinkResponse{Answer: res.Answer})
}

// statusFor distinguishes input, lookup and engine failures. Engine errors
// reach the caller verbatim; none are retried here.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrMalformedOffer),
		errors.Is(err, core.ErrMissingVideo),
		errors.Is(err, core.ErrNoStreamInOffer),
		errors.Is(err, core.ErrSimulcastNotOffered):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUnknownSession),
		errors.Is(err, core.ErrUnknownTrack),
		errors.Is(err, core.ErrUnknownEncoding):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, op string, status int, err error) {
	log.Error().Err(err).Str("module", "adapters.http").Str("operation", op).Int("status", status).Msg("negotiation failed")
	negotiationsTotal.WithLabelValues(op, "error").Inc()
	c.JSON(status, errorResponse{
		Message: err.Error(),
		Stack:   string(debug.Stack()),
	})
}
