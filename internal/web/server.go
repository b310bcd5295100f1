package web

import (
    "net/http"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"

    "github.com/jaminalder/slide-tac-toe/internal/app"
    "github.com/jaminalder/slide-tac-toe/internal/settings"
)

// Options configures the HTTP layer. Zero values fall back to in-memory
// settings, Default preferences and a 15s heartbeat.
type Options struct {
    Settings  settings.Store
    Defaults  settings.Preferences
    Heartbeat time.Duration
}

// NewServer wires routes and returns an http.Handler. It installs the JSON
// renderer used for websocket broadcasts on s.
func NewServer(s *app.Service, opts Options) http.Handler {
    if opts.Settings == nil {
        opts.Settings = settings.NewMemoryStore()
    }
    if opts.Defaults == (settings.Preferences{}) {
        opts.Defaults = settings.Default()
    }
    if opts.Heartbeat <= 0 {
        opts.Heartbeat = 15 * time.Second
    }
    h := &handlers{
        svc:       s,
        tpl:       loadTemplates(),
        store:     opts.Settings,
        defaults:  opts.Defaults,
        heartbeat: opts.Heartbeat,
    }
    s.SetRenderer(renderState)

    r := chi.NewRouter()
    r.Use(middleware.RequestID)
    r.Use(middleware.RealIP)
    r.Use(middleware.Logger)
    r.Use(middleware.Recoverer)

    r.Get("/", h.index)
    r.Get("/healthz", h.health)
    r.Get("/settings", h.settingsForm)
    r.Post("/settings", h.saveSettings)
    r.Post("/game", h.create)
    r.Route("/game/{id}", func(r chi.Router) {
        r.Get("/", h.view)
        r.Post("/play", h.play)
        r.Post("/reset", h.reset)
        r.Get("/state", h.state)
        r.Get("/events", h.events)
        r.Get("/ws", h.ws)
    })
    return r
}
