package stocks

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/foliotrack/foliotrack/internal/domain"
	"github.com/foliotrack/foliotrack/pkg/httpx"
)

// Handler handles stock HTTP requests
type Handler struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandler creates a new stocks handler
func NewHandler(repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "stocks").Logger(),
	}
}

// HandleCreate handles POST / - register a stock
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var stock Stock
	if err := json.NewDecoder(r.Body).Decode(&stock); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := stock.Validate(); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}

	if existing, err := h.repo.GetByCode(stock.Code); err == nil && existing != nil {
		httpx.WriteDomainError(w, domain.NewConflict("stock", "code already registered"))
		return
	}

	if err := h.repo.Create(&stock); err != nil {
		h.log.Error().Err(err).Str("code", stock.Code).Msg("Failed to create stock")
		httpx.WriteDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, stock)
}

// HandleList handles GET /
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.repo.GetAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list stocks")
		httpx.WriteDomainError(w, err)
		return
	}
	if stocks == nil {
		stocks = []Stock{}
	}
	httpx.WriteJSON(w, http.StatusOK, stocks)
}

// HandleGet handles GET /{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid stock id")
		return
	}

	stock, err := h.repo.GetByID(id)
	if err != nil {
		h.log.Error().Err(err).Int64("stock_id", id).Msg("Failed to get stock")
		httpx.WriteDomainError(w, err)
		return
	}
	if stock == nil {
		httpx.WriteDomainError(w, domain.NewNotFound("stock", id))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, stock)
}

// HandleUpdatePrice handles PUT /{id}/price - price push from the external
// market data collaborator
func (h *Handler) HandleUpdatePrice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid stock id")
		return
	}

	var req struct {
		Price decimal.Decimal `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Price.IsNegative() {
		httpx.WriteDomainError(w, domain.NewValidation("price", "cannot be negative"))
		return
	}

	stock, err := h.repo.GetByID(id)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	if stock == nil {
		httpx.WriteDomainError(w, domain.NewNotFound("stock", id))
		return
	}

	if err := h.repo.UpdatePrice(id, req.Price); err != nil {
		h.log.Error().Err(err).Int64("stock_id", id).Msg("Failed to update price")
		httpx.WriteDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"stock_id": id,
		"price":    req.Price,
	})
}
