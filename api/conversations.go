package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/garnizeh/fairway/internal/fault"
	"github.com/garnizeh/fairway/internal/models"
	"github.com/garnizeh/fairway/pkg/repository"
)

type ConversationsHandler struct {
	convs repository.ConversationRepo
	msgs  repository.MessageRepo
}

func NewConversationsHandler(convs repository.ConversationRepo, msgs repository.MessageRepo) *ConversationsHandler {
	return &ConversationsHandler{convs: convs, msgs: msgs}
}

// ListConversations handles GET /v1/conversations for the acting account.
func (h *ConversationsHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, fault.New(fault.CodeUnauthenticated, "no verified account"))
		return
	}

	items, err := h.convs.ListConversationsByAccount(r.Context(), actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Conversation{}
	}
	writeJSON(w, map[string]any{"items": items}, http.StatusOK)
}

// ListMessages handles GET /v1/conversations/{id}/messages.
func (h *ConversationsHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, fault.New(fault.CodeUnauthenticated, "no verified account"))
		return
	}
	convID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	conv, err := h.participantConversation(r, actor.ID, convID)
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	items, err := h.msgs.ListMessagesByConversation(r.Context(), conv.ID, queryInt(q.Get("limit"), 100, 500), queryInt(q.Get("offset"), 0, 1<<30))
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Message{}
	}
	writeJSON(w, map[string]any{"items": items}, http.StatusOK)
}

type postMessageRequest struct {
	Content string `json:"content"`
}

// PostMessage handles POST /v1/conversations/{id}/messages.
func (h *ConversationsHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, fault.New(fault.CodeUnauthenticated, "no verified account"))
		return
	}
	convID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fault.New(fault.CodeValidation, "invalid json"))
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		writeError(w, fault.Validation("invalid message", map[string]string{"content": "is required"}))
		return
	}

	conv, err := h.participantConversation(r, actor.ID, convID)
	if err != nil {
		writeError(w, err)
		return
	}

	m := &models.Message{
		ConversationID: conv.ID,
		SenderID:       actor.ID,
		Content:        req.Content,
		MessageType:    models.MessageTypeText,
	}
	id, err := h.msgs.CreateMessage(r.Context(), m)
	if err != nil {
		writeError(w, err)
		return
	}
	m.ID = id
	writeJSON(w, m, http.StatusCreated)
}

func (h *ConversationsHandler) participantConversation(r *http.Request, accountID, convID int64) (*models.Conversation, error) {
	conv, err := h.convs.GetConversationByID(r.Context(), convID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, fault.New(fault.CodeNotFound, "conversation not found")
	}
	if conv.CourseID != accountID && conv.ProfessionalID != accountID {
		return nil, fault.New(fault.CodeForbidden, "not a participant of this conversation")
	}
	return conv, nil
}
