package api

import (
	"encoding/json"
	"net/http"

	"github.com/garnizeh/fairway/internal/app"
	"github.com/garnizeh/fairway/internal/fault"
	"github.com/garnizeh/fairway/internal/models"
)

type ApplicationsHandler struct {
	applications *app.ApplicationService
}

func NewApplicationsHandler(applications *app.ApplicationService) *ApplicationsHandler {
	return &ApplicationsHandler{applications: applications}
}

type submitApplicationRequest struct {
	Message      string  `json:"message"`
	ProposedRate float64 `json:"proposed_rate"`
}

type applicationActionRequest struct {
	Action string `json:"action"`
}

// SubmitApplication handles POST /v1/jobs/{id}/applications.
func (h *ApplicationsHandler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
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

	var req submitApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fault.New(fault.CodeValidation, "invalid json"))
		return
	}

	a, err := h.applications.Submit(r.Context(), actor, jobID, req.Message, req.ProposedRate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, a, http.StatusCreated)
}

// TransitionApplication handles PATCH /v1/applications/{id} with an action of
// accept, reject, confirm, or decline. Course-side and professional-side
// actions are authorized inside the lifecycle engine.
func (h *ApplicationsHandler) TransitionApplication(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, fault.New(fault.CodeUnauthenticated, "no verified account"))
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req applicationActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fault.New(fault.CodeValidation, "invalid json"))
		return
	}

	var a *models.Application
	switch req.Action {
	case "accept":
		a, err = h.applications.Accept(r.Context(), actor, id)
	case "reject":
		a, err = h.applications.Reject(r.Context(), actor, id)
	case "confirm":
		a, err = h.applications.Confirm(r.Context(), actor, id)
	case "decline":
		a, err = h.applications.Decline(r.Context(), actor, id)
	default:
		writeError(w, fault.Validation("invalid action", map[string]string{"action": "must be accept, reject, confirm, or decline"}))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, a, http.StatusOK)
}

// WithdrawApplication handles DELETE /v1/applications/{id}.
func (h *ApplicationsHandler) WithdrawApplication(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, fault.New(fault.CodeUnauthenticated, "no verified account"))
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.applications.Withdraw(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "withdrawn"}, http.StatusOK)
}

// ListJobApplications handles GET /v1/jobs/{id}/applications (owning course).
func (h *ApplicationsHandler) ListJobApplications(w http.ResponseWriter, r *http.Request) {
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

	items, err := h.applications.ListForJob(r.Context(), actor, jobID)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Application{}
	}
	writeJSON(w, map[string]any{"items": items}, http.StatusOK)
}

// ListOwnApplications handles GET /v1/applications (professional).
func (h *ApplicationsHandler) ListOwnApplications(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, fault.New(fault.CodeUnauthenticated, "no verified account"))
		return
	}

	items, err := h.applications.ListOwn(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Application{}
	}
	writeJSON(w, map[string]any{"items": items}, http.StatusOK)
}
