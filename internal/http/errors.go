// Package httpapi exposes the HTTP API layer of the service.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ecomm-labs/realtime-catalog/internal/cart"
	"github.com/ecomm-labs/realtime-catalog/internal/catalog"
	"github.com/ecomm-labs/realtime-catalog/internal/fstore"
	"github.com/ecomm-labs/realtime-catalog/internal/obs"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message, Details: details})
}

// writeStoreError maps the store error taxonomy onto HTTP statuses. Storage
// failures are logged here; validation and lookup failures are the caller's
// problem and only reported back.
func writeStoreError(w http.ResponseWriter, err error) {
	var (
		prodValidation *catalog.ValidationError
		cartValidation *cart.ValidationError
		corrupt        *fstore.CorruptStateError
		persist        *fstore.PersistenceError
	)
	switch {
	case errors.As(err, &prodValidation), errors.As(err, &cartValidation):
		WriteJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, catalog.ErrDuplicateCode):
		WriteJSONError(w, http.StatusConflict, "duplicate_code", err.Error())
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, cart.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.As(err, &corrupt), errors.As(err, &persist):
		obs.Logger.Error("storage_error", "error", err)
		WriteJSONError(w, http.StatusInternalServerError, "storage_error", err.Error())
	default:
		obs.Logger.Error("internal_error", "error", err)
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
