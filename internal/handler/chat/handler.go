package chat

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/z-chat/pkg/utils"
)

// Replier produces the answer to one chat message.
type Replier interface {
	Reply(ctx context.Context, userMessage string) (string, error)
}

type chatPayload struct {
	Message string `json:"message"`
}

// Handler serves the companion /chat backend.
type Handler struct {
	replier Replier
	logger  *zap.Logger
}

// New creates the handler. A nil replier answers 503 so the front-end shows
// its fallback message.
func New(replier Replier, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{replier: replier, logger: logger.Named("chat")}
}

// RegisterRoutes mounts POST /chat.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatPayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(payload.Message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	if h.replier == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "no language model configured")
		return
	}

	reply, err := h.replier.Reply(r.Context(), payload.Message)
	if err != nil {
		h.logger.Error("failed to generate reply", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to get AI response")
		return
	}

	utils.RespondJSON(w, http.StatusOK, chatPayload{Message: reply})
}
