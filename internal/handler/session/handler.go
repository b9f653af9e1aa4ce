package session

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/zhouzirui/z-chat/internal/model/chat"
	"github.com/zhouzirui/z-chat/internal/model/persona"
	chatService "github.com/zhouzirui/z-chat/internal/service/chat"
	"github.com/zhouzirui/z-chat/internal/service/conversation"
	"github.com/zhouzirui/z-chat/pkg/utils"
)

// View is the JSON shape of one open session.
type View struct {
	Session chat.Session    `json:"session"`
	Persona persona.Persona `json:"persona"`
	State   chat.State      `json:"state"`
}

// SubmitResult reports the outcome of a submit request. A refused submission
// is not an error: Submitted is false and State is unchanged.
type SubmitResult struct {
	Submitted bool          `json:"submitted"`
	Reply     *chat.Message `json:"reply,omitempty"`
	State     chat.State    `json:"state"`
}

// Handler exposes session lifecycle and the conversation store over HTTP.
type Handler struct {
	chatSvc  *chatService.Service
	personas persona.Store
	logger   *zap.Logger
}

// New creates the session handler.
func New(chatSvc *chatService.Service, personas persona.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{chatSvc: chatSvc, personas: personas, logger: logger.Named("session")}
}

// RegisterRoutes mounts the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Route("/session/{sessionID}", func(sr chi.Router) {
		sr.Get("/", h.handleGetSession)
		sr.Delete("/", h.handleDeleteSession)
		sr.Put("/input", h.handleSetInput)
		sr.Post("/submit", h.handleSubmit)
	})
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PersonaID string `json:"personaId"`
	}

	if err := utils.DecodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, ok := persona.Resolve(h.personas, payload.PersonaID)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "persona not found")
		return
	}

	session, err := h.chatSvc.CreateSession(r.Context(), p.ID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, View{Session: session, Persona: p, State: chat.State{Messages: []chat.Message{}}})
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}

	p, _ := h.personas.FindByID(session.PersonaID)
	utils.RespondJSON(w, http.StatusOK, View{Session: session, Persona: p, State: ctrl.Store().Snapshot()})
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.chatSvc.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetInput(w http.ResponseWriter, r *http.Request) {
	_, ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	utils.RespondJSON(w, http.StatusOK, ctrl.Store().SetInput(payload.Text))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	session, ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var payload struct {
		Text *string `json:"text"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Text != nil {
		ctrl.Store().SetInput(*payload.Text)
	}

	reply, submitted := ctrl.Submit(r.Context())
	result := SubmitResult{Submitted: submitted, State: ctrl.Store().Snapshot()}
	if submitted {
		result.Reply = &reply
	} else {
		h.logger.Debug("submission refused", zap.String("sessionId", session.ID))
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (chat.Session, *conversation.Controller, bool) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return chat.Session{}, nil, false
	}

	ctrl, err := h.chatSvc.Controller(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return chat.Session{}, nil, false
	}
	return session, ctrl, true
}

func respondServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, chatService.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondError(w, http.StatusInternalServerError, err.Error())
}
