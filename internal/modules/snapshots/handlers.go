package snapshots

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/foliotrack/foliotrack/pkg/httpx"
)

// Handler handles snapshot HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new snapshots handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "snapshots").Logger(),
	}
}

// HandleGenerate handles POST /accounts/{id}/snapshots
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	snapshot, err := h.service.Generate(accountID, time.Now().UTC())
	if err != nil {
		h.log.Warn().Err(err).Int64("account_id", accountID).Msg("Snapshot generation rejected")
		httpx.WriteDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, snapshot)
}

// HandleList handles GET /accounts/{id}/snapshots
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, parseErr := strconv.Atoi(limitStr)
		if parseErr != nil || l < 1 || l > 10000 {
			httpx.WriteError(w, http.StatusBadRequest, "invalid limit, must be 1-10000")
			return
		}
		limit = l
	}

	snapshots, err := h.service.List(accountID, limit)
	if err != nil {
		h.log.Error().Err(err).Int64("account_id", accountID).Msg("Failed to list snapshots")
		httpx.WriteDomainError(w, err)
		return
	}
	if snapshots == nil {
		snapshots = []Snapshot{}
	}

	httpx.WriteJSON(w, http.StatusOK, snapshots)
}

// HandleReturn handles GET /accounts/{id}/snapshots/return?from=&to=
func (h *Handler) HandleReturn(w http.ResponseWriter, r *http.Request) {
	accountID, from, to, ok := h.parseRangeParams(w, r)
	if !ok {
		return
	}

	ret, err := h.service.TimeWeightedReturn(accountID, from, to)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"account_id": accountID,
		"from":       from,
		"to":         to,
		"return_pct": ret,
	})
}

// HandleStats handles GET /accounts/{id}/snapshots/stats?from=&to=
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	accountID, from, to, ok := h.parseRangeParams(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Stats(accountID, from, to)
	if err != nil {
		h.log.Error().Err(err).Int64("account_id", accountID).Msg("Failed to compute snapshot stats")
		httpx.WriteDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) parseRangeParams(w http.ResponseWriter, r *http.Request) (int64, string, string, bool) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid account id")
		return 0, "", "", false
	}

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	for _, date := range []string{from, to} {
		if _, err := time.Parse(DateFormat, date); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "from and to must be YYYY-MM-DD")
			return 0, "", "", false
		}
	}
	if from > to {
		httpx.WriteError(w, http.StatusBadRequest, "from must be <= to")
		return 0, "", "", false
	}

	return accountID, from, to, true
}
