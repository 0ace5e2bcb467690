// internal/api/handler/api/quote.go
package api

import (
	"context"
	"net/http"

	"github.com/newthinker/finratio/internal/api/response"
	"github.com/newthinker/finratio/internal/core"
)

// QuoteProvider fetches current quotes.
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (*core.Quote, error)
}

// QuoteHandler handles quote requests.
type QuoteHandler struct {
	quotes QuoteProvider
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(quotes QuoteProvider) *QuoteHandler {
	return &QuoteHandler{quotes: quotes}
}

// Current handles GET /api/v1/quote/current?symbol=<symbol>
func (h *QuoteHandler) Current(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolParam(w, r)
	if !ok {
		return
	}

	quote, err := h.quotes.Quote(r.Context(), symbol)
	if err != nil {
		response.Fail(w, err)
		return
	}
	if !quote.IsValid() {
		response.Fail(w, core.WrapError(core.ErrPriceNotFound, nil))
		return
	}
	response.JSON(w, http.StatusOK, quote)
}
