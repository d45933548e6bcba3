package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/sih-tools/evalportal/internal/app"
	"github.com/sih-tools/evalportal/internal/models"
)

type JuryHandler struct {
	service *app.Service
}

func NewJuryHandler(service *app.Service) *JuryHandler {
	return &JuryHandler{
		service: service,
	}
}

func (h *JuryHandler) HandleListJuries(w http.ResponseWriter, r *http.Request) {
	juries, err := h.service.Store.ListJuries()
	if err != nil {
		logger.Error.Printf("Failed to list juries: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load juries")
		return
	}

	// strip password hashes from the roster listing
	type juryView struct {
		JuryID     string  `json:"jury_id"`
		Name       string  `json:"name"`
		Email      *string `json:"email,omitempty"`
		Department string  `json:"department"`
	}
	views := make([]juryView, 0, len(juries))
	for _, j := range juries {
		views = append(views, juryView{
			JuryID:     j.JuryID,
			Name:       j.Name,
			Email:      j.Email,
			Department: j.Department,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *JuryHandler) HandleUpsertJury(w http.ResponseWriter, r *http.Request) {
	var req models.JuryUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+strings.Join(models.FieldErrors(err), ", "))
		return
	}

	if err := h.service.UpsertJury(&req); err != nil {
		logger.Error.Printf("Failed to upsert jury %s: %v", req.JuryID, err)
		writeError(w, http.StatusInternalServerError, "Failed to save jury")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *JuryHandler) HandleDeleteJury(w http.ResponseWriter, r *http.Request) {
	juryID := r.PathValue("jury_id")
	if juryID == "" {
		writeError(w, http.StatusBadRequest, "Invalid jury id")
		return
	}

	if err := h.service.Store.DeleteJury(juryID); err != nil {
		logger.Error.Printf("Failed to delete jury %s: %v", juryID, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete jury")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
