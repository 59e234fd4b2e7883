package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/foliotrack/foliotrack/internal/domain"
)

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error body with the given status code
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// WriteDomainError maps a domain error to its HTTP status code:
// validation 400, not-found 404, conflict 409, insufficient funds/shares 422.
// Anything else is a 500 with a generic body.
func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		WriteError(w, http.StatusBadRequest, err.Error())
	case domain.IsNotFound(err):
		WriteError(w, http.StatusNotFound, err.Error())
	case domain.IsConflict(err):
		WriteError(w, http.StatusConflict, err.Error())
	case domain.IsInsufficient(err):
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
