package resolution

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// WriteError maps engine errors to HTTP status codes. Consistency
// violations are logged in full but surfaced opaque.
func WriteError(w http.ResponseWriter, err error) {
	var (
		validationErr  *ValidationError
		stateErr       *InvalidStateError
		operationErr   *InvalidOperationError
		consistencyErr *ConsistencyError
	)
	switch {
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
	case IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &stateErr):
		http.Error(w, stateErr.Error(), http.StatusConflict)
	case errors.As(err, &operationErr):
		http.Error(w, operationErr.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &consistencyErr):
		log.Errorf("consistency violation: %s", consistencyErr.Message)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	default:
		log.Errorf("internal error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
