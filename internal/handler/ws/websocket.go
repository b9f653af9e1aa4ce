package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zhouzirui/z-chat/internal/model/chat"
	chatService "github.com/zhouzirui/z-chat/internal/service/chat"
	"github.com/zhouzirui/z-chat/internal/service/conversation"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
)

// Inbound frame types.
const (
	TypeInput  = "input"
	TypeSubmit = "submit"
)

// Outbound frame types.
const (
	TypeState = "state"
	TypeError = "error"
)

// InboundMessage is a frame sent by the page.
type InboundMessage struct {
	Type string  `json:"type"`
	Text *string `json:"text,omitempty"`
}

// OutgoingMessage is a frame pushed to the page.
type OutgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Handler binds one WebSocket connection to a session's conversation.
type Handler struct {
	chatSvc  *chatService.Service
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// New creates the WebSocket handler.
func New(chatSvc *chatService.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		chatSvc: chatSvc,
		logger:  logger.Named("websocket"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the WebSocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/session/{sessionID}/ws", h.handleWebSocket)
}

// conn serializes writes; gorilla allows a single concurrent writer.
type conn struct {
	ws        *websocket.Conn
	sessionID string
	mu        sync.Mutex
}

func (c *conn) send(msgType string, data interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(OutgoingMessage{
		Type:      msgType,
		SessionID: c.sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

func (c *conn) control(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(messageType, data, time.Now().Add(writeWait))
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	ctrl, err := h.chatSvc.Controller(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", zap.Error(err))
		return
	}
	defer wsConn.Close()

	c := &conn{ws: wsConn, sessionID: sessionID}
	logger := h.logger.With(zap.String("sessionId", sessionID))
	logger.Debug("connection opened")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_ = wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		return wsConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	updates, unsubscribe := ctrl.Store().Subscribe()
	defer unsubscribe()

	go h.pushLoop(ctx, c, updates, logger)
	go h.pingLoop(ctx, c)

	for {
		var msg InboundMessage
		if err := wsConn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("read error", zap.Error(err))
			}
			return
		}
		_ = wsConn.SetReadDeadline(time.Now().Add(pongWait))

		h.handleMessage(ctx, c, ctrl, msg, logger)
	}
}

func (h *Handler) handleMessage(ctx context.Context, c *conn, ctrl *conversation.Controller, msg InboundMessage, logger *zap.Logger) {
	switch msg.Type {
	case TypeInput:
		if msg.Text == nil {
			_ = c.send(TypeError, map[string]string{"message": "text is required"})
			return
		}
		ctrl.Store().SetInput(*msg.Text)
	case TypeSubmit:
		if msg.Text != nil {
			ctrl.Store().SetInput(*msg.Text)
		}
		sent, ok := ctrl.Begin()
		if !ok {
			logger.Debug("submission refused")
			return
		}
		// the reply reaches the page through the state subscription
		go ctrl.Resolve(ctx, sent)
	default:
		_ = c.send(TypeError, map[string]string{"message": "unknown message type: " + msg.Type})
	}
}

// pushLoop forwards every published snapshot. A closed channel means the
// session was discarded.
func (h *Handler) pushLoop(ctx context.Context, c *conn, updates <-chan chat.State, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case state, open := <-updates:
			if !open {
				_ = c.control(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if err := c.send(TypeState, state); err != nil {
				logger.Debug("push failed", zap.Error(err))
				return
			}
		}
	}
}

func (h *Handler) pingLoop(ctx context.Context, c *conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.control(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
