package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/RichardoC/askbot/internal/auth"
	"github.com/RichardoC/askbot/internal/chat"
)

const genericFailure = "Sorry, I encountered an error. Please try again."

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	chats  *chat.Service
	db     Pinger
	logger *zap.Logger
}

func NewHandler(chats *chat.Service, db Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		chats:  chats,
		db:     db,
		logger: logger,
	}
}

type SendMessageRequest struct {
	Message string `json:"message"`
	ChatID  string `json:"chatId"`
}

type SendMessageResponse struct {
	Message string `json:"message"`
	ChatID  string `json:"chatId,omitempty"`
}

type CreateChatRequest struct {
	Title string `json:"title"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// NewRouter mounts the chat API behind authn. /healthz is public.
func NewRouter(h *Handler, authn auth.Authenticator) *mux.Router {
	r := mux.NewRouter()
	r.Use(h.logRequests)
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(requireUser(authn))
	api.HandleFunc("/chat", h.SendMessage).Methods(http.MethodPost)
	api.HandleFunc("/chat", h.ChatStatus).Methods(http.MethodGet)
	api.HandleFunc("/chats", h.ListChats).Methods(http.MethodGet)
	api.HandleFunc("/chats", h.CreateChat).Methods(http.MethodPost)
	api.HandleFunc("/chats/{chatId}", h.GetChat).Methods(http.MethodGet)
	api.HandleFunc("/chats/{chatId}", h.DeleteChat).Methods(http.MethodDelete)
	return r
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))
	h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFromContext(r.Context())

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Invalid chat request body", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, messageResponse{Message: genericFailure})
		return
	}

	res, err := h.chats.Send(r.Context(), userID, req.ChatID, req.Message)
	if errors.Is(err, chat.ErrNotFound) {
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: "Chat not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to process message",
			zap.Error(err),
			zap.String("chat_id", req.ChatID))
		h.writeJSON(w, http.StatusInternalServerError, messageResponse{Message: genericFailure})
		return
	}

	h.writeJSON(w, http.StatusOK, SendMessageResponse{Message: res.Message, ChatID: res.ChatID})
}

func (h *Handler) ChatStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, messageResponse{Message: "Chat GET endpoint working"})
}

func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFromContext(r.Context())

	chats, err := h.chats.List(r.Context(), userID)
	if err != nil {
		h.internalError(w, r, "Failed to get chats", err)
		return
	}

	h.logger.Debug("Retrieved chats",
		zap.Int("count", len(chats)),
		zap.String("user_id", userID))
	h.writeJSON(w, http.StatusOK, chats)
}

func (h *Handler) CreateChat(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFromContext(r.Context())

	var req CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.internalError(w, r, "Invalid create chat body", err)
		return
	}

	c, err := h.chats.Create(r.Context(), userID, req.Title)
	if err != nil {
		h.internalError(w, r, "Failed to create chat", err)
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

func (h *Handler) GetChat(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFromContext(r.Context())
	chatID := mux.Vars(r)["chatId"]

	c, err := h.chats.Get(r.Context(), userID, chatID)
	if errors.Is(err, chat.ErrNotFound) {
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: "Chat not found"})
		return
	}
	if err != nil {
		h.internalError(w, r, "Failed to get chat", err)
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFromContext(r.Context())
	chatID := mux.Vars(r)["chatId"]

	err := h.chats.Delete(r.Context(), userID, chatID)
	if errors.Is(err, chat.ErrNotFound) {
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: "Chat not found"})
		return
	}
	if err != nil {
		h.internalError(w, r, "Failed to delete chat", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn("Health check failed", zap.Error(err))
			h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
