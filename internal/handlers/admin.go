package handlers

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/sih-tools/evalportal/internal/app"
	"github.com/sih-tools/evalportal/internal/portal"
)

type AdminHandler struct {
	service *app.Service
}

func NewAdminHandler(service *app.Service) *AdminHandler {
	return &AdminHandler{
		service: service,
	}
}

// HandleScores re-authenticates on every request: the score sheet is the
// most sensitive page in the portal.
func (h *AdminHandler) HandleScores(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.VerifyAdmin(r.Context(), body.Username, body.Password); err != nil {
		switch {
		case app.IsInvalidCredentials(err):
			writeError(w, http.StatusUnauthorized, "Unauthorized")
		case app.IsAccountLocked(err):
			writeError(w, http.StatusTooManyRequests, "Too many failed attempts, try again later")
		default:
			logger.Error.Printf("Admin auth failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to fetch scores")
		}
		return
	}

	report, err := h.service.FetchScoreReport()
	if err != nil {
		logger.Error.Printf("Failed to fetch score report: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch scores")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *AdminHandler) HandleGetAssignments(w http.ResponseWriter, r *http.Request) {
	juryID := r.PathValue("jury_id")
	ids, err := h.service.Portal.JuryAssignments(juryID)
	if err != nil {
		writePortalError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

func (h *AdminHandler) HandleSetAssignments(w http.ResponseWriter, r *http.Request) {
	juryID := r.PathValue("jury_id")

	var body struct {
		TeamIDs []string `json:"team_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.TeamIDs == nil {
		writeError(w, http.StatusBadRequest, "team_ids array required")
		return
	}

	result, err := h.service.Portal.SetAssignments(juryID, body.TeamIDs)
	if err != nil {
		writePortalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   result.AssignedCount,
		"skipped": result.SkippedIDs,
	})
}

// HandleImportMapping accepts either a JSON mapping array or CSV text with
// a team_id,jury_id header. Bad lines are reported, not fatal.
func (h *AdminHandler) HandleImportMapping(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mapping []portal.ImportPair `json:"mapping"`
		CSV     string              `json:"csv"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pairs := body.Mapping
	if len(pairs) == 0 && body.CSV != "" {
		parsed, err := parseMappingCSV(body.CSV)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid CSV: "+err.Error())
			return
		}
		pairs = parsed
	}
	if len(pairs) == 0 {
		writeError(w, http.StatusBadRequest, "Provide mapping array or csv text")
		return
	}

	result, err := h.service.Portal.ImportAssignmentPairs(pairs)
	if err != nil {
		writePortalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"imported": result.SuccessCount,
		"errors":   result.LineErrors,
	})
}

func parseMappingCSV(text string) ([]portal.ImportPair, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var pairs []portal.ImportPair
	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		teamID := strings.TrimSpace(record[0])
		juryID := strings.TrimSpace(record[1])
		if teamID == "" || juryID == "" || strings.EqualFold(teamID, "team_id") {
			continue
		}
		pairs = append(pairs, portal.ImportPair{TeamID: teamID, JuryID: juryID})
	}
	return pairs, nil
}
