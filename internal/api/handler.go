// Package api serves the latest analysis over HTTP as JSON.
package api

import (
	"strings"
	"time"

	"SectorPulse/internal/analyzer"
	"SectorPulse/internal/model"
	"SectorPulse/internal/recorder"
	"SectorPulse/internal/store"
	"SectorPulse/internal/strategy"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const notReady = "no analysis available yet"

// Handler serves read-only views of the store and recorder.
type Handler struct {
	Store    *store.Store
	Recorder recorder.Recorder
}

// NewHandler creates a Handler.
func NewHandler(st *store.Store, rec recorder.Recorder) *Handler {
	return &Handler{Store: st, Recorder: rec}
}

// RegisterRoutes mounts the API on e.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api")
	g.GET("/overview", h.Overview)
	g.GET("/signals", h.Signals)
	g.GET("/sectors", h.Sectors)
	g.GET("/symbols/:symbol", h.Symbol)
}

// OverviewResponse is the body of GET /api/overview.
type OverviewResponse struct {
	CycleID   string               `json:"cycle_id"`
	UpdatedAt time.Time            `json:"updated_at"`
	Snapshot  model.MarketSnapshot `json:"snapshot"`
	Signals   map[model.Signal]int `json:"signals"`
	Issues    []analyzer.Issue     `json:"issues,omitempty"`
}

// SignalsRequest filters GET /api/signals.
type SignalsRequest struct {
	Signal string `query:"signal" validate:"omitempty,oneof=Buy Sell Unknown"`
	Sector string `query:"sector"`
}

// SymbolRequest addresses GET /api/symbols/:symbol.
type SymbolRequest struct {
	Symbol string `param:"symbol" validate:"required"`
	Limit  int    `query:"limit" default:"30" validate:"gte=1,lte=365"`
}

// SymbolResponse is the body of GET /api/symbols/:symbol.
type SymbolResponse struct {
	Record  model.SymbolRecord     `json:"record"`
	History []recorder.SignalPoint `json:"history"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Ready         bool      `json:"ready"`
	CycleID       string    `json:"cycle_id,omitempty"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
	LastFailureAt time.Time `json:"last_failure_at,omitempty"`
}

func (h *Handler) Health(c echo.Context) error {
	st := h.Store.State()
	return SuccessResponse(c, HealthResponse{
		Ready:         st.Result != nil,
		CycleID:       st.CycleID,
		UpdatedAt:     st.UpdatedAt,
		LastError:     st.LastError,
		LastFailureAt: st.LastFailureAt,
	})
}

func (h *Handler) Overview(c echo.Context) error {
	st := h.Store.State()
	res := st.Result
	if res == nil {
		return UnavailableResponse(c, notReady)
	}
	return SuccessResponse(c, OverviewResponse{
		CycleID:   st.CycleID,
		UpdatedAt: st.UpdatedAt,
		Snapshot:  res.Snapshot,
		Signals:   strategy.CountSignals(res.Records),
		Issues:    res.Issues,
	})
}

func (h *Handler) Signals(c echo.Context) error {
	req := &SignalsRequest{}
	if verr := ReadAndValidateRequest(c, req); verr != nil {
		return BadRequestResponse(c, verr)
	}
	res, _, ok := h.Store.Latest()
	if !ok {
		return UnavailableResponse(c, notReady)
	}

	out := make([]model.SymbolRecord, 0, len(res.Records))
	for _, r := range res.Records {
		if req.Signal != "" && string(r.Signal) != req.Signal {
			continue
		}
		if req.Sector != "" && !strings.EqualFold(r.Sector, req.Sector) {
			continue
		}
		out = append(out, r)
	}
	return SuccessResponse(c, out)
}

func (h *Handler) Sectors(c echo.Context) error {
	res, _, ok := h.Store.Latest()
	if !ok {
		return UnavailableResponse(c, notReady)
	}
	return SuccessResponse(c, res.Sectors)
}

func (h *Handler) Symbol(c echo.Context) error {
	req := &SymbolRequest{}
	if verr := ReadAndValidateRequest(c, req); verr != nil {
		return BadRequestResponse(c, verr)
	}
	res, _, ok := h.Store.Latest()
	if !ok {
		return UnavailableResponse(c, notReady)
	}
	rec, found := res.Record(req.Symbol)
	if !found {
		return NotFoundResponse(c, "unknown symbol "+req.Symbol)
	}

	hist, err := h.Recorder.SignalHistory(c.Request().Context(), rec.Symbol, req.Limit)
	if err != nil {
		log.Error().Err(err).Str("symbol", rec.Symbol).Msg("signal history")
		return InternalServerErrorResponse(c)
	}
	if hist == nil {
		hist = []recorder.SignalPoint{}
	}
	return SuccessResponse(c, SymbolResponse{Record: rec, History: hist})
}
