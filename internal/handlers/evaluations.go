package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/sih-tools/evalportal/internal/app"
	"github.com/sih-tools/evalportal/internal/metrics"
	"github.com/sih-tools/evalportal/internal/models"
)

type EvaluationHandler struct {
	service *app.Service
}

func NewEvaluationHandler(service *app.Service) *EvaluationHandler {
	return &EvaluationHandler{
		service: service,
	}
}

func (h *EvaluationHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		metrics.APIRequestDuration.WithLabelValues(
			r.URL.Path,
			r.Method,
			"200",
		).Observe(duration)
	}()

	var req models.EvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.EvaluationsTotal.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// With auth on, the session token must belong to the jury named in
	// the request body.
	subject, err := h.service.ValidateJuryToken(r)
	if err != nil {
		metrics.EvaluationsTotal.WithLabelValues("unauthorized").Inc()
		logger.Error.Printf("Jury auth failed: %v", err)
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if subject != "" && subject != req.JuryID {
		metrics.EvaluationsTotal.WithLabelValues("unauthorized").Inc()
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	presented, err := h.service.Portal.RecordEvaluation(&req)
	if err != nil {
		metrics.EvaluationsTotal.WithLabelValues("rejected").Inc()
		writePortalError(w, err)
		return
	}

	metrics.EvaluationsTotal.WithLabelValues("ok").Inc()
	metrics.TeamScoreHistogram.WithLabelValues(req.JuryID).Observe(req.TotalScore())

	writeJSON(w, http.StatusOK, map[string]bool{"success": true, "presented": presented})
}

func (h *EvaluationHandler) HandleJuryLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password required")
		return
	}

	result, err := h.service.JuryLogin(r.Context(), body.Email, body.Password)
	if err != nil {
		switch {
		case app.IsInvalidCredentials(err):
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
		case app.IsAccountLocked(err):
			writeError(w, http.StatusTooManyRequests, "Too many failed attempts, try again later")
		default:
			logger.Error.Printf("Jury login failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *EvaluationHandler) HandleAssignedTeams(w http.ResponseWriter, r *http.Request) {
	juryID := r.PathValue("jury_id")
	if juryID == "" {
		writeError(w, http.StatusBadRequest, "Invalid jury id")
		return
	}

	jury, err := h.service.Store.GetJury(juryID)
	if err != nil {
		logger.Error.Printf("Failed to look up jury %s: %v", juryID, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch assigned teams")
		return
	}
	if jury == nil {
		writeError(w, http.StatusNotFound, "Jury not found")
		return
	}

	rows, err := h.service.Store.ListAssignedTeams(juryID)
	if err != nil {
		logger.Error.Printf("Failed to list assigned teams for %s: %v", juryID, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch assigned teams")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
