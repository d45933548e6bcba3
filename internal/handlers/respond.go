package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/sih-tools/evalportal/internal/portal"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writePortalError maps the core error taxonomy onto HTTP statuses.
// Storage faults keep their detail in the server log only.
func writePortalError(w http.ResponseWriter, err error) {
	var validation *portal.ValidationError
	if errors.As(err, &validation) {
		writeError(w, http.StatusBadRequest, validation.Error())
		return
	}

	var capacity *portal.CapacityError
	if errors.As(err, &capacity) {
		writeError(w, http.StatusBadRequest, capacity.Error())
		return
	}

	var authz *portal.AuthorizationError
	if errors.As(err, &authz) {
		writeError(w, http.StatusForbidden, authz.Error())
		return
	}

	logger.Error.Printf("Storage failure: %v", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
