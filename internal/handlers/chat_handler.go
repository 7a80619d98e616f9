// File: internal/handlers/chat_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/memochat/memochat/internal/middleware"
	"github.com/memochat/memochat/internal/services"
	chatservice "github.com/memochat/memochat/internal/services/chat"
)

type ChatHandler struct {
	ChatService *services.ChatService
}

func NewChatHandler(cs *services.ChatService) *ChatHandler {
	return &ChatHandler{ChatService: cs}
}

// CreateChat creates an empty chat for the caller. Title is optional; an
// omitted or blank title leaves the chat untitled.
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	callerID, ok := callerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	// Body is optional for this route.
	_ = json.NewDecoder(r.Body).Decode(&req)

	chat, err := h.ChatService.CreateChat(r.Context(), callerID, req.Title)
	if err != nil {
		writeServiceError(w, err, "invalid_title", "failed_to_create_chat")
		return
	}
	writeJSON(w, http.StatusCreated, chat)
}

// GetUserChats returns the caller's chats, favorites first.
func (h *ChatHandler) GetUserChats(w http.ResponseWriter, r *http.Request) {
	callerID, ok := callerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	projection, err := h.ChatService.ListChats(r.Context(), callerID)
	if err != nil {
		writeServiceError(w, err, "invalid_request", "failed_to_fetch_chats")
		return
	}
	writeJSON(w, http.StatusOK, projection)
}

func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	callerID, ok := callerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	chat, err := h.ChatService.GetChat(r.Context(), mux.Vars(r)["id"], callerID)
	if err != nil {
		writeServiceError(w, err, "invalid_request", "failed_to_fetch_chat")
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

func (h *ChatHandler) RenameChat(w http.ResponseWriter, r *http.Request) {
	callerID, ok := callerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_title")
		return
	}

	title, err := h.ChatService.RenameChat(r.Context(), mux.Vars(r)["id"], callerID, req.Title)
	if err != nil {
		writeServiceError(w, err, "invalid_title", "failed_to_rename_chat")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"title": title})
}

func (h *ChatHandler) SetFavorite(w http.ResponseWriter, r *http.Request) {
	callerID, ok := callerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Favorite bool `json:"favorite"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	favorite, err := h.ChatService.SetFavorite(r.Context(), mux.Vars(r)["id"], callerID, req.Favorite)
	if err != nil {
		writeServiceError(w, err, "invalid_request", "failed_to_update_favorite")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"favorite": favorite})
}

func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	callerID, ok := callerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.ChatService.DeleteChat(r.Context(), mux.Vars(r)["id"], callerID); err != nil {
		writeServiceError(w, err, "invalid_request", "failed_to_delete_chat")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AppendMessage appends one message to the chat and returns the new message
// ID together with any title assigned by this append.
func (h *ChatHandler) AppendMessage(w http.ResponseWriter, r *http.Request) {
	callerID, ok := callerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "content_required")
		return
	}

	result, err := h.ChatService.AppendMessage(r.Context(), mux.Vars(r)["id"], callerID, req.Content)
	if err != nil {
		writeServiceError(w, err, "content_required", "failed_to_create_message")
		return
	}

	chatBody := map[string]interface{}{"id": result.ChatID}
	if result.Title != "" {
		chatBody["title"] = result.Title
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":   result.MessageID,
		"chat": chatBody,
	})
}

// GetChatMessages pages backward through a chat's history, newest first.
func (h *ChatHandler) GetChatMessages(w http.ResponseWriter, r *http.Request) {
	callerID, ok := callerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// A malformed limit falls back to the service default.
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	page, err := h.ChatService.ListMessages(r.Context(), mux.Vars(r)["id"], callerID, limit, r.URL.Query().Get("cursor"))
	if err != nil {
		writeServiceError(w, err, "invalid_request", "failed_to_fetch_messages")
		return
	}

	var nextCursor interface{}
	if page.NextCursor != "" {
		nextCursor = page.NextCursor
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages":   page.Items,
		"nextCursor": nextCursor,
	})
}

func callerFrom(r *http.Request) (string, bool) {
	callerID, ok := r.Context().Value(middleware.UserIDKey).(string)
	return callerID, ok && callerID != ""
}

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses with a stable
// machine-readable kind.
func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// writeServiceError maps a typed service error onto an HTTP status.
// validationCode names this route's bad-input kind; failureCode is the
// storage-failure fallback.
func writeServiceError(w http.ResponseWriter, err error, validationCode, failureCode string) {
	switch {
	case chatservice.IsValidation(err):
		writeError(w, http.StatusBadRequest, validationCode)
	case chatservice.IsNotFound(err):
		writeError(w, http.StatusNotFound, "chat_not_found")
	case chatservice.IsForbidden(err):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		writeError(w, http.StatusInternalServerError, failureCode)
	}
}
