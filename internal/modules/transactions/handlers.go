package transactions

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/foliotrack/foliotrack/pkg/httpx"
)

// Handler handles transaction HTTP requests
type Handler struct {
	processor *Processor
	repo      *Repository
	log       zerolog.Logger
}

// NewHandler creates a new transactions handler
func NewHandler(processor *Processor, repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		processor: processor,
		repo:      repo,
		log:       log.With().Str("handler", "transactions").Logger(),
	}
}

// HandleCreate handles POST / - execute a trade
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	txn, err := h.processor.Process(req)
	if err != nil {
		h.log.Warn().Err(err).
			Int64("account_id", req.AccountID).
			Str("type", string(req.Type)).
			Msg("Transaction rejected")
		httpx.WriteDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, txn)
}

// HandleList handles GET /accounts/{id}/transactions
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

	txns, err := h.repo.GetByAccount(accountID, limit)
	if err != nil {
		h.log.Error().Err(err).Int64("account_id", accountID).Msg("Failed to list transactions")
		httpx.WriteDomainError(w, err)
		return
	}
	if txns == nil {
		txns = []Transaction{}
	}

	httpx.WriteJSON(w, http.StatusOK, txns)
}
