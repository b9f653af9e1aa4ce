package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zhouzirui/z-chat/internal/handler/chat"
	"github.com/zhouzirui/z-chat/internal/handler/persona"
	"github.com/zhouzirui/z-chat/internal/handler/session"
	"github.com/zhouzirui/z-chat/internal/handler/stream"
	"github.com/zhouzirui/z-chat/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/z-chat/internal/middleware"
	personaModel "github.com/zhouzirui/z-chat/internal/model/persona"
	chatService "github.com/zhouzirui/z-chat/internal/service/chat"
	"github.com/zhouzirui/z-chat/internal/web"
)

// Deps are the services the HTTP surface is built on.
type Deps struct {
	Personas personaModel.Store
	Sessions *chatService.Service
	// Replier answers the companion /chat endpoint; nil answers 503.
	Replier chat.Replier
	Logger  *zap.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chat.New(deps.Replier, logger).RegisterRoutes(r)

	r.Route("/api", func(api chi.Router) {
		persona.New(deps.Personas).RegisterRoutes(api)
		session.New(deps.Sessions, deps.Personas, logger).RegisterRoutes(api)
		stream.New(deps.Sessions, logger).RegisterRoutes(api)
		ws.New(deps.Sessions, logger).RegisterRoutes(api)
	})

	r.Handle("/*", web.Handler())

	return r
}
