package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/sih-tools/evalportal/internal/app"
	"github.com/sih-tools/evalportal/internal/metrics"
	"github.com/sih-tools/evalportal/internal/models"
)

type SubmissionHandler struct {
	service *app.Service
}

func NewSubmissionHandler(service *app.Service) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
	}
}

func (h *SubmissionHandler) HandleProblems(w http.ResponseWriter, r *http.Request) {
	codes := h.service.Config.Problems.Codes()
	items := make([]map[string]string, 0, len(codes))
	for _, code := range codes {
		items = append(items, map[string]string{
			"code":  code,
			"title": "Problem " + code,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *SubmissionHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		metrics.APIRequestDuration.WithLabelValues(
			r.URL.Path,
			r.Method,
			"200",
		).Observe(duration)
	}()

	var req models.SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.SubmissionsTotal.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Portal.Submit(&req)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()
		writePortalError(w, err)
		return
	}

	metrics.SubmissionsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": result.Message,
	})
}

func (h *SubmissionHandler) HandleTeamSubmissions(w http.ResponseWriter, r *http.Request) {
	teamID := r.PathValue("team_id")
	if teamID == "" {
		writeError(w, http.StatusBadRequest, "Invalid team id")
		return
	}

	subs, err := h.service.Portal.TeamSubmissions(teamID)
	if err != nil {
		writePortalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *SubmissionHandler) HandleListSubmissions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	rows, err := h.service.Store.SearchSubmissions(
		query.Get("search"),
		query.Get("sort"),
		query.Get("order"),
	)
	if err != nil {
		logger.Error.Printf("Failed to list submissions: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch submissions")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *SubmissionHandler) HandleMarkPresented(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid submission id")
		return
	}

	if err := h.service.Store.SetSubmissionPresented(id); err != nil {
		logger.Error.Printf("Failed to mark submission %d presented: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to update submission")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *SubmissionHandler) HandleDeleteSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid submission id")
		return
	}

	if err := h.service.Store.DeleteSubmission(id); err != nil {
		logger.Error.Printf("Failed to delete submission %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete submission")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
