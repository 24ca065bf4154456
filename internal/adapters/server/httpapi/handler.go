// Package httpapi provides the REST HTTP adapter for the serve surface.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/raceday/pitstop/internal/adapters/server/common"
)

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	schedules common.ScheduleService
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs one HTTP API adapter over the schedule service.
func NewHandler(schedules common.ScheduleService) *Handler {
	return &Handler{schedules: schedules}
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSONError(w, http.StatusMethodNotAllowed, APIError{
			Code:    "method_not_allowed",
			Message: "only GET is supported",
		})
		return
	}

	path := strings.Trim(r.URL.Path, "/")
	parts := strings.Split(path, "/")
	switch {
	case path == "forks":
		writeJSON(w, http.StatusOK, map[string][]string{"forks": h.schedules.ForkIDs()})
	case path == "changes":
		writeJSON(w, http.StatusOK, map[string][]string{"changes": h.schedules.ChangeIDsLoaded()})
	case path == "compare":
		h.handleCompare(w, r)
	case len(parts) == 2 && parts[0] == "schedules":
		h.handleResolve(w, parts[1])
	case len(parts) == 5 && parts[0] == "schedules" && parts[2] == "trace":
		h.handleExplain(w, parts[1], parts[3], parts[4])
	default:
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
	}
}

// handleResolve serves GET `/schedules/{fork}`.
func (h *Handler) handleResolve(w http.ResponseWriter, forkID string) {
	schedule, err := h.schedules.Resolve(forkID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

// handleExplain serves GET `/schedules/{fork}/trace/{category}/{member}`.
func (h *Handler) handleExplain(w http.ResponseWriter, forkID, category, member string) {
	chain, err := h.schedules.Explain(forkID, category, member)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"fork":     forkID,
		"category": category,
		"member":   member,
		"trace":    chain,
	})
}

// handleCompare serves GET `/compare?left={fork}&right={fork}`.
func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	left := strings.TrimSpace(r.URL.Query().Get("left"))
	right := strings.TrimSpace(r.URL.Query().Get("right"))
	if left == "" || right == "" {
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "bad_request",
			Message: "left and right fork ids are required",
		})
		return
	}
	result, err := common.CompareForks(h.schedules, left, right)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeErrorFrom renders one resolution error as a structured API error.
func writeErrorFrom(w http.ResponseWriter, err error) {
	writeJSONError(w, common.StatusFromError(err), APIError{
		Code:    common.CodeFromError(err),
		Message: err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, apiErr APIError) {
	writeJSON(w, status, ErrorEnvelope{Error: apiErr})
}
