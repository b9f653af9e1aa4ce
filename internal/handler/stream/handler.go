package stream

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	chatService "github.com/zhouzirui/z-chat/internal/service/chat"
	"github.com/zhouzirui/z-chat/pkg/utils"
)

// DefaultKeepAlive is the interval between keep-alive comments.
const DefaultKeepAlive = 15 * time.Second

// Handler pushes conversation state snapshots over Server-Sent Events.
type Handler struct {
	chatSvc   *chatService.Service
	logger    *zap.Logger
	keepAlive time.Duration
}

// New creates a new stream handler
func New(chatSvc *chatService.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		chatSvc:   chatSvc,
		logger:    logger.Named("sse"),
		keepAlive: DefaultKeepAlive,
	}
}

// WithKeepAlive overrides the keep-alive interval.
func (h *Handler) WithKeepAlive(d time.Duration) *Handler {
	if d > 0 {
		h.keepAlive = d
	}
	return h
}

// RegisterRoutes mounts the event stream route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/session/{sessionID}/events", h.handleEvents)
}

// handleEvents writes one "state" event per published snapshot until the
// client goes away or the session is discarded.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	ctrl, err := h.chatSvc.Controller(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	updates, cancel := ctrl.Store().Subscribe()
	defer cancel()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	logger := h.logger.With(zap.String("sessionId", sessionID))
	logger.Debug("opening state stream")

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			logger.Debug("client closed state stream")
			return
		case state, open := <-updates:
			if !open {
				_ = utils.SendSSEEvent(w, flusher, "closed", map[string]string{"sessionId": sessionID})
				logger.Debug("session discarded, closing state stream")
				return
			}
			if err := utils.SendSSEEvent(w, flusher, "state", state); err != nil {
				logger.Warn("failed to write state event", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := utils.SendSSEComment(w, flusher, "keep-alive"); err != nil {
				return
			}
		}
	}
}
