package api

import (
	"net/http"

	"github.com/garnizeh/fairway/internal/fault"
	"github.com/garnizeh/fairway/internal/models"
	"github.com/garnizeh/fairway/pkg/repository"
)

type NotificationsHandler struct {
	notifs repository.NotificationRepo
}

func NewNotificationsHandler(notifs repository.NotificationRepo) *NotificationsHandler {
	return &NotificationsHandler{notifs: notifs}
}

// ListNotifications handles GET /v1/notifications for the acting account.
func (h *NotificationsHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, fault.New(fault.CodeUnauthenticated, "no verified account"))
		return
	}

	q := r.URL.Query()
	items, err := h.notifs.ListNotificationsByRecipient(r.Context(), actor.ID, queryInt(q.Get("limit"), 50, 500), queryInt(q.Get("offset"), 0, 1<<30))
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Notification{}
	}
	writeJSON(w, map[string]any{"items": items}, http.StatusOK)
}

// MarkRead handles POST /v1/notifications/{id}/read.
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
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

	ok, err = h.notifs.MarkNotificationRead(r.Context(), id, actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, fault.New(fault.CodeNotFound, "notification not found"))
		return
	}
	writeJSON(w, map[string]string{"status": "read"}, http.StatusOK)
}
