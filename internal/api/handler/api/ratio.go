// internal/api/handler/api/ratio.go
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/newthinker/finratio/internal/api/response"
	"github.com/newthinker/finratio/internal/core"
	"github.com/newthinker/finratio/internal/report"
	"github.com/newthinker/finratio/internal/sector"
)

// ReportBuilder builds a company report.
type ReportBuilder interface {
	Build(ctx context.Context, symbol string) (*report.CompanyReport, error)
}

// SectorBuilder builds a sector report.
type SectorBuilder interface {
	Aggregate(ctx context.Context, symbol string) (*sector.Report, error)
}

// RatioHandler serves company and sector ratio reports.
type RatioHandler struct {
	reports ReportBuilder
	sectors SectorBuilder
}

// NewRatioHandler creates a new ratio handler.
func NewRatioHandler(reports ReportBuilder, sectors SectorBuilder) *RatioHandler {
	return &RatioHandler{reports: reports, sectors: sectors}
}

// Company handles GET /api/v1/ratio?symbol=<symbol>
func (h *RatioHandler) Company(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolParam(w, r)
	if !ok {
		return
	}

	rep, err := h.reports.Build(r.Context(), symbol)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, rep)
}

// Sector handles GET /api/v1/ratio/sector?symbol=<symbol>
func (h *RatioHandler) Sector(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolParam(w, r)
	if !ok {
		return
	}

	rep, err := h.sectors.Aggregate(r.Context(), symbol)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"symbol":  rep.Symbol,
		"sector":  rep.Sector,
		"peers":   rep.Peers,
		"skipped": rep.Skipped,
		"ratios":  rep,
	})
}

// symbolParam reads the symbol query parameter, writing a 400 when absent.
func symbolParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))
	if symbol == "" {
		response.Fail(w, core.ErrMissingSymbol)
		return "", false
	}
	return symbol, true
}
