package performance

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/foliotrack/foliotrack/pkg/httpx"
)

// Handler handles performance HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new performance handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "performance").Logger(),
	}
}

// HandleAccountReport handles GET /accounts/{id}/performance
func (h *Handler) HandleAccountReport(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	report, err := h.service.AccountReport(accountID)
	if err != nil {
		h.log.Error().Err(err).Int64("account_id", accountID).Msg("Failed to build performance report")
		httpx.WriteDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, report)
}

// HandleUserReport handles GET /users/{id}/performance
func (h *Handler) HandleUserReport(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	report, err := h.service.UserReport(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to build user performance report")
		httpx.WriteDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, report)
}
