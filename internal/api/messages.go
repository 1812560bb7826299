package api

import (
	"log/slog"
	"net/http"

	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/model"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/store"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/validate"
)

// MessagesHandler handles messaging between users about items.
type MessagesHandler struct {
	Store store.Store
}

// List handles GET /api/messages.
func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	msgs, err := h.Store.GetMessages(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	jsonResponse(w, http.StatusOK, msgs)
}

// Create handles POST /api/messages. The sender is always the caller.
func (h *MessagesHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := validate.CreateMessage.Validate(body); err != nil {
		writeError(w, r, err)
		return
	}

	var in model.InsertMessage
	if err := decodeJSON(body, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.FromUserID = user.ID

	item, err := h.Store.GetItem(r.Context(), in.ItemID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	recipient, err := h.Store.GetUser(r.Context(), in.ToUserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if recipient == nil {
		jsonError(w, http.StatusNotFound, "recipient not found")
		return
	}

	msg, err := h.Store.CreateMessage(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("message sent", "id", msg.ID, "item", msg.ItemID, "from", msg.FromUserID, "to", msg.ToUserID)
	jsonResponse(w, http.StatusCreated, msg)
}

// MarkRead handles PATCH /api/messages/{id}/read. Only the recipient may
// mark a message as read.
func (h *MessagesHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	msg, err := h.Store.GetMessage(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if msg == nil {
		jsonError(w, http.StatusNotFound, "message not found")
		return
	}
	if msg.ToUserID != user.ID {
		jsonError(w, http.StatusForbidden, "only the recipient can mark a message as read")
		return
	}

	found, err := h.Store.MarkMessageAsRead(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !found {
		jsonError(w, http.StatusNotFound, "message not found")
		return
	}

	msg.Read = true
	jsonResponse(w, http.StatusOK, msg)
}
