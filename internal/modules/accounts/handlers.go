package accounts

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/foliotrack/foliotrack/internal/domain"
	"github.com/foliotrack/foliotrack/pkg/httpx"
)

// Handler handles account HTTP requests
type Handler struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandler creates a new accounts handler
func NewHandler(repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "accounts").Logger(),
	}
}

// HandleCreate handles POST / - create an account
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var account Account
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := account.Validate(); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}

	if err := h.repo.Create(&account); err != nil {
		h.log.Error().Err(err).Msg("Failed to create account")
		httpx.WriteDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, account)
}

// HandleGet handles GET /{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	account, err := h.repo.GetByID(id)
	if err != nil {
		h.log.Error().Err(err).Int64("account_id", id).Msg("Failed to get account")
		httpx.WriteDomainError(w, err)
		return
	}
	if account == nil {
		httpx.WriteDomainError(w, domain.NewNotFound("account", id))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, account)
}

// HandleList handles GET / - list accounts, optionally by user
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	var (
		list []Account
		err  error
	)
	if userID != "" {
		list, err = h.repo.GetByUserID(userID)
	} else {
		list, err = h.repo.GetAll()
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list accounts")
		httpx.WriteDomainError(w, err)
		return
	}

	if list == nil {
		list = []Account{}
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}
