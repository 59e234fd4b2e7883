package holdings

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/foliotrack/foliotrack/pkg/httpx"
)

// Handler handles holding HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new holdings handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "holdings").Logger(),
	}
}

// HandleList handles GET /accounts/{id}/holdings - valued holdings
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	valued, err := h.service.ValuedHoldings(accountID)
	if err != nil {
		h.log.Error().Err(err).Int64("account_id", accountID).Msg("Failed to value holdings")
		httpx.WriteDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, valued)
}

// HandleSummary handles GET /accounts/{id}/holdings/summary
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	summary, err := h.service.Summary(accountID)
	if err != nil {
		h.log.Error().Err(err).Int64("account_id", accountID).Msg("Failed to summarize holdings")
		httpx.WriteDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, summary)
}
