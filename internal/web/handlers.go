package web

import (
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "log"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/go-chi/chi/v5"

    "github.com/jaminalder/slide-tac-toe/internal/ai"
    "github.com/jaminalder/slide-tac-toe/internal/app"
    "github.com/jaminalder/slide-tac-toe/internal/domain"
    "github.com/jaminalder/slide-tac-toe/internal/i18n"
    "github.com/jaminalder/slide-tac-toe/internal/settings"
)

type handlers struct {
    svc       *app.Service
    tpl       *templates
    store     settings.Store
    defaults  settings.Preferences
    heartbeat time.Duration
}

// preferences returns the saved preferences of the requesting player, or the
// defaults in the language the browser asks for.
func (h *handlers) preferences(r *http.Request) settings.Preferences {
    p := h.defaults
    p.Lang = i18n.Match(r.Header.Get("Accept-Language"))
    pid := playerID(r)
    if pid == "" {
        return p
    }
    saved, found, err := h.store.Get(r.Context(), pid)
    if err != nil {
        log.Printf("load settings for %s: %v", pid, err)
        return p
    }
    if !found {
        return p
    }
    return saved
}

func (h *handlers) renderBoard(gs app.GameState, lang i18n.Lang, pid, errMsg string) []byte {
    controls := pid != "" && gs.Owner == pid
    return renderTemplate(h.tpl.board, "", newBoardView(gs, lang, controls, errMsg))
}

func writeHTML(w http.ResponseWriter, status int, b []byte) {
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(status)
    _, _ = w.Write(b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(v)
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
    ensurePlayerCookie(w, r)
    data := struct {
        page
        Difficulties []ai.Difficulty
    }{newPage(h.preferences(r)), ai.Difficulties}
    writeHTML(w, http.StatusOK, renderTemplate(h.tpl.index, "base", data))
}

// gameOptions reads mode and difficulty from the form, keeping def for
// anything missing or unknown.
func gameOptions(r *http.Request, def app.Options) app.Options {
    _ = r.ParseForm()
    opts := def
    if m, err := app.ParseMode(r.Form.Get("mode")); err == nil {
        opts.Mode = m
    }
    if d, err := ai.ParseDifficulty(r.Form.Get("difficulty")); err == nil {
        opts.Difficulty = d
    }
    return opts
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
    pid := ensurePlayerCookie(w, r)
    p := h.preferences(r)
    opts := gameOptions(r, app.Options{Mode: p.Mode, Difficulty: p.Difficulty})
    gs, err := h.svc.CreateGame(pid, opts)
    if err != nil {
        http.Error(w, "failed to create", http.StatusInternalServerError)
        return
    }
    http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    // ensure cookie and claim the game if nobody owns it yet
    pid := ensurePlayerCookie(w, r)
    _, gs, err := h.svc.Join(id, pid)
    if err != nil {
        http.NotFound(w, r)
        return
    }
    p := h.preferences(r)
    data := struct {
        page
        Board boardView
    }{newPage(p), newBoardView(*gs, p.Lang, gs.Owner == pid, "")}
    writeHTML(w, http.StatusOK, renderTemplate(h.tpl.game, "base", data))
}

// formIndex parses a board coordinate; anything unparsable is out of range.
func formIndex(v string) int {
    n, err := strconv.Atoi(strings.TrimSpace(v))
    if err != nil {
        return -1
    }
    return n
}

// errorKey maps a move error to its message key.
func errorKey(err error) string {
    switch {
    case errors.Is(err, app.ErrNotYourTurn):
        return "errNotYourTurn"
    case errors.Is(err, app.ErrNotAPlayer):
        return "spectator"
    case errors.Is(err, domain.ErrOccupied):
        return "errOccupied"
    case errors.Is(err, domain.ErrOutOfBounds):
        return "errOutOfBounds"
    case errors.Is(err, domain.ErrGameOver):
        return "errGameOver"
    }
    return "errInvalid"
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    pid := playerID(r)
    _ = r.ParseForm()
    ri := formIndex(r.Form.Get("r"))
    ci := formIndex(r.Form.Get("c"))
    if ri < 0 || ri > 2 || ci < 0 || ci > 2 {
        ri, ci = -1, -1
    }
    lang := h.preferences(r).Lang
    gs, err := h.svc.Play(id, pid, ri, ci)
    var errMsg string
    if err != nil {
        if errors.Is(err, app.ErrNotFound) {
            http.NotFound(w, r)
            return
        }
        errMsg = i18n.T(lang, errorKey(err))
        if g, ok := h.svc.Get(id); ok {
            gs = g
        }
    }
    if gs == nil {
        http.NotFound(w, r)
        return
    }
    writeHTML(w, http.StatusOK, h.renderBoard(*gs, lang, pid, errMsg))
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    pid := playerID(r)
    cur, ok := h.svc.Get(id)
    if !ok {
        http.NotFound(w, r)
        return
    }
    lang := h.preferences(r).Lang
    opts := gameOptions(r, app.Options{Mode: cur.Mode, Difficulty: cur.Difficulty})
    gs, err := h.svc.Reset(id, pid, opts)
    if err != nil {
        writeHTML(w, http.StatusForbidden, h.renderBoard(*cur, lang, pid, i18n.T(lang, errorKey(err))))
        return
    }
    writeHTML(w, http.StatusOK, h.renderBoard(*gs, lang, pid, ""))
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
    gs, ok := h.svc.Get(chi.URLParam(r, "id"))
    if !ok {
        writeJSON(w, http.StatusNotFound, map[string]string{"error": app.ErrNotFound.Error()})
        return
    }
    writeJSON(w, http.StatusOK, newStateDTO(*gs))
}

func (h *handlers) settingsForm(w http.ResponseWriter, r *http.Request) {
    ensurePlayerCookie(w, r)
    data := struct {
        page
        Langs        []i18n.Lang
        Difficulties []ai.Difficulty
    }{newPage(h.preferences(r)), i18n.Langs, ai.Difficulties}
    writeHTML(w, http.StatusOK, renderTemplate(h.tpl.settings, "base", data))
}

func (h *handlers) saveSettings(w http.ResponseWriter, r *http.Request) {
    pid := ensurePlayerCookie(w, r)
    p := h.preferences(r)
    _ = r.ParseForm()
    if v, err := settings.ParseTheme(r.Form.Get("theme")); err == nil {
        p.Theme = v
    }
    if v, err := i18n.ParseLang(r.Form.Get("lang")); err == nil {
        p.Lang = v
    }
    opts := gameOptions(r, app.Options{Mode: p.Mode, Difficulty: p.Difficulty})
    p.Mode, p.Difficulty = opts.Mode, opts.Difficulty
    if err := h.store.Save(r.Context(), pid, p); err != nil {
        log.Printf("save settings for %s: %v", pid, err)
        http.Error(w, "failed to save settings", http.StatusInternalServerError)
        return
    }
    http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    if _, ok := h.svc.Get(id); !ok {
        http.NotFound(w, r)
        return
    }
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("X-Accel-Buffering", "no")
    // Plain requests only get the headers.
    if r.Header.Get("Accept") != "text/event-stream" {
        w.WriteHeader(http.StatusOK)
        return
    }
    flusher, ok := w.(http.Flusher)
    if !ok {
        w.WriteHeader(http.StatusOK)
        return
    }
    pid := playerID(r)
    lang := h.preferences(r).Lang
    ctx := r.Context()
    ch, unsub := h.svc.Subscribe(ctx, id)
    defer unsub()
    ticker := time.NewTicker(h.heartbeat)
    defer ticker.Stop()
    flusher.Flush()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            _, _ = io.WriteString(w, ": ping\n\n")
            flusher.Flush()
        case _, ok := <-ch:
            if !ok {
                return
            }
            // Each viewer gets the board in its own language and controls.
            gs, ok := h.svc.Get(id)
            if !ok {
                return
            }
            writeSSE(w, "board", h.renderBoard(*gs, lang, pid, ""))
            flusher.Flush()
        }
    }
}

// writeSSE emits one event, prefixing every line of data.
func writeSSE(w io.Writer, event string, data []byte) {
    _, _ = fmt.Fprintf(w, "event: %s\n", event)
    for _, line := range strings.Split(string(data), "\n") {
        _, _ = fmt.Fprintf(w, "data: %s\n", line)
    }
    _, _ = io.WriteString(w, "\n")
}
