package api

import (
	"encoding/json"
	"net/http"

	"github.com/garnizeh/fairway/internal/app"
	"github.com/garnizeh/fairway/internal/fault"
	"github.com/garnizeh/fairway/internal/models"
)

type UpdatesHandler struct {
	progress *app.ProgressService
}

func NewUpdatesHandler(progress *app.ProgressService) *UpdatesHandler {
	return &UpdatesHandler{progress: progress}
}

// PostUpdate handles POST /v1/jobs/{id}/updates.
func (h *UpdatesHandler) PostUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, fault.New(fault.CodeUnauthenticated, "no verified account"))
		return
	}
	jobID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var in app.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, fault.New(fault.CodeValidation, "invalid json"))
		return
	}

	u, err := h.progress.PostUpdate(r.Context(), actor, jobID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, u, http.StatusCreated)
}

// ListUpdates handles GET /v1/jobs/{id}/updates.
func (h *UpdatesHandler) ListUpdates(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, fault.New(fault.CodeUnauthenticated, "no verified account"))
		return
	}
	jobID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := h.progress.ListUpdates(r.Context(), actor, jobID)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.JobUpdate{}
	}
	writeJSON(w, map[string]any{"items": items}, http.StatusOK)
}

type jobStatusRequest struct {
	Action          string `json:"action"`
	CompletionNotes string `json:"completion_notes,omitempty"`
}

// TransitionJobStatus handles PATCH /v1/jobs/{id}/status with an action of
// start or complete.
func (h *UpdatesHandler) TransitionJobStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, fault.New(fault.CodeUnauthenticated, "no verified account"))
		return
	}
	jobID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req jobStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fault.New(fault.CodeValidation, "invalid json"))
		return
	}

	switch req.Action {
	case "start":
		u, err := h.progress.StartWork(r.Context(), actor, jobID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, u, http.StatusOK)
	case "complete":
		job, err := h.progress.CompleteWork(r.Context(), actor, jobID, req.CompletionNotes)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, job, http.StatusOK)
	default:
		writeError(w, fault.Validation("invalid action", map[string]string{"action": "must be start or complete"}))
	}
}
