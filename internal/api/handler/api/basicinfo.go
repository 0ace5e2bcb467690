// internal/api/handler/api/basicinfo.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/newthinker/finratio/internal/api/response"
	"github.com/newthinker/finratio/internal/core"
)

// maxSearchLimit caps the limit a caller may request.
const maxSearchLimit = 100

// Directory searches company directory records.
type Directory interface {
	Search(ctx context.Context, term string, limit int) ([]core.BasicInfo, error)
}

// SearchResult is one matching company.
type SearchResult struct {
	Symbol   string `json:"symbol"`
	LongName string `json:"longName"`
	Sector   string `json:"sector"`
}

// BasicInfoHandler handles company directory requests.
type BasicInfoHandler struct {
	dir Directory
}

// NewBasicInfoHandler creates a new directory handler.
func NewBasicInfoHandler(dir Directory) *BasicInfoHandler {
	return &BasicInfoHandler{dir: dir}
}

// Search handles GET /api/v1/basic-info/search?searchTerm=<prefix>&limit=<n>
func (h *BasicInfoHandler) Search(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("searchTerm"))
	if term == "" {
		response.Fail(w, core.ErrMissingSearchTerm)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.Fail(w, core.WrapError(core.ErrInvalidInput, fmt.Errorf("limit: %q", raw)))
			return
		}
		limit = min(n, maxSearchLimit)
	}

	infos, err := h.dir.Search(r.Context(), term, limit)
	if err != nil {
		response.Fail(w, err)
		return
	}

	results := make([]SearchResult, 0, len(infos))
	for _, info := range infos {
		results = append(results, SearchResult{
			Symbol:   info.Symbol,
			LongName: info.LongName,
			Sector:   info.Sector,
		})
	}
	response.JSON(w, http.StatusOK, results)
}
