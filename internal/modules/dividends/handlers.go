package dividends

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/foliotrack/foliotrack/internal/domain"
	"github.com/foliotrack/foliotrack/pkg/httpx"
)

// Handler handles dividend HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new dividends handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "dividends").Logger(),
	}
}

// HandleAnnounce handles POST / - announce a dividend
func (h *Handler) HandleAnnounce(w http.ResponseWriter, r *http.Request) {
	var dividend Dividend
	if err := json.NewDecoder(r.Body).Decode(&dividend); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.Announce(&dividend); err != nil {
		h.log.Warn().Err(err).Int64("stock_id", dividend.StockID).Msg("Dividend announcement rejected")
		httpx.WriteDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, dividend)
}

// HandleProcess handles POST /{id}/process - fan out payments
func (h *Handler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid dividend id")
		return
	}

	created, err := h.service.ProcessPayments(id)
	if err != nil {
		h.log.Error().Err(err).Int64("dividend_id", id).Msg("Failed to process dividend payments")
		httpx.WriteDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"dividend_id":      id,
		"payments_created": created,
	})
}

// HandleListPayments handles GET /accounts/{id}/dividends
func (h *Handler) HandleListPayments(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}

	payments, err := h.service.ListPayments(accountID, filter)
	if err != nil {
		h.log.Error().Err(err).Int64("account_id", accountID).Msg("Failed to list dividend payments")
		httpx.WriteDomainError(w, err)
		return
	}
	if payments == nil {
		payments = []DividendPayment{}
	}

	httpx.WriteJSON(w, http.StatusOK, payments)
}

// HandleTotal handles GET /accounts/{id}/dividends/total
func (h *Handler) HandleTotal(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}

	total, err := h.service.TotalReceived(accountID, filter)
	if err != nil {
		h.log.Error().Err(err).Int64("account_id", accountID).Msg("Failed to total dividends")
		httpx.WriteDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"account_id":      accountID,
		"total_dividends": total,
	})
}

// HandleCancelPayment handles POST /payments/{id}/cancel
func (h *Handler) HandleCancelPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	if err := h.service.CancelPayment(id); err != nil {
		h.log.Warn().Err(err).Int64("payment_id", id).Msg("Payment cancellation rejected")
		httpx.WriteDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"payment_id": id, "status": PaymentCancelled})
}

func parseFilter(r *http.Request) (PaymentFilter, error) {
	var filter PaymentFilter

	if stockStr := r.URL.Query().Get("stock_id"); stockStr != "" {
		stockID, err := strconv.ParseInt(stockStr, 10, 64)
		if err != nil || stockID < 1 {
			return filter, errInvalidFilter("stock_id")
		}
		filter.StockID = stockID
	}
	filter.From = r.URL.Query().Get("from")
	filter.To = r.URL.Query().Get("to")

	for _, date := range []string{filter.From, filter.To} {
		if date != "" && !isValidDate(date) {
			return filter, errInvalidFilter("date, use YYYY-MM-DD")
		}
	}

	return filter, nil
}

func isValidDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

func errInvalidFilter(detail string) error {
	return domain.NewValidation("filter", "invalid "+detail)
}
