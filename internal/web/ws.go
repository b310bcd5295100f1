package web

import (
    "context"
    "encoding/json"
    "errors"
    "net/http"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/gorilla/websocket"

    "github.com/jaminalder/slide-tac-toe/internal/ai"
    "github.com/jaminalder/slide-tac-toe/internal/app"
    "github.com/jaminalder/slide-tac-toe/internal/domain"
    "github.com/jaminalder/slide-tac-toe/internal/i18n"
)

var upgrader = websocket.Upgrader{
    ReadBufferSize:  1024,
    WriteBufferSize: 1024,
}

var errUnknownCommand = errors.New("unknown command")

// wsCommand is a client to server websocket frame:
// {"type":"play","index":4} or {"type":"reset","mode":"cpu","difficulty":"hard"}.
type wsCommand struct {
    Type       string `json:"type"`
    Index      *int   `json:"index,omitempty"`
    Mode       string `json:"mode,omitempty"`
    Difficulty string `json:"difficulty,omitempty"`
}

func (h *handlers) ws(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    if _, ok := h.svc.Get(id); !ok {
        http.NotFound(w, r)
        return
    }
    pid := playerID(r)
    lang := h.preferences(r).Lang
    conn, err := upgrader.Upgrade(w, r, nil)
    if err != nil {
        return
    }
    defer conn.Close()

    ctx, cancel := context.WithCancel(r.Context())
    defer cancel()
    updates, unsub := h.svc.Subscribe(ctx, id)
    defer unsub()

    gs, ok := h.svc.Get(id)
    if !ok {
        return
    }
    if err := conn.WriteMessage(websocket.TextMessage, renderState(*gs)); err != nil {
        return
    }
    replies := make(chan []byte, 8)
    go h.readWS(ctx, cancel, conn, id, pid, lang, replies)
    _ = writeWS(ctx, conn, updates, replies, h.heartbeat)
}

// readWS applies client commands until the connection fails. Successful
// moves come back through the broadcast; failures are answered directly.
func (h *handlers) readWS(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, id, pid string, lang i18n.Lang, replies chan<- []byte) {
    defer cancel()
    for {
        _, data, err := conn.ReadMessage()
        if err != nil {
            return
        }
        var cmd wsCommand
        if err := json.Unmarshal(data, &cmd); err != nil {
            cmd.Type = ""
        }
        err = h.apply(id, pid, cmd)
        if err == nil {
            continue
        }
        b, _ := json.Marshal(wsMessage{Type: "error", Error: err.Error(), Message: i18n.T(lang, errorKey(err))})
        select {
        case replies <- b:
        case <-ctx.Done():
            return
        }
    }
}

func (h *handlers) apply(id, pid string, cmd wsCommand) error {
    switch cmd.Type {
    case "play":
        if cmd.Index == nil {
            return domain.ErrOutOfBounds
        }
        _, err := h.svc.PlayIndex(id, pid, *cmd.Index)
        return err
    case "reset":
        cur, ok := h.svc.Get(id)
        if !ok {
            return app.ErrNotFound
        }
        opts := app.Options{Mode: cur.Mode, Difficulty: cur.Difficulty}
        if m, err := app.ParseMode(cmd.Mode); err == nil {
            opts.Mode = m
        }
        if d, err := ai.ParseDifficulty(cmd.Difficulty); err == nil {
            opts.Difficulty = d
        }
        _, err := h.svc.Reset(id, pid, opts)
        return err
    case "ping":
        return nil
    }
    return errUnknownCommand
}

var pingFrame, _ = json.Marshal(wsMessage{Type: "ping"})

// writeWS is the only writer on conn. It forwards broadcasts and replies and
// sends a ping frame after idle of silence.
func writeWS(ctx context.Context, conn *websocket.Conn, updates, replies <-chan []byte, idle time.Duration) error {
    ticker := time.NewTicker(idle)
    defer ticker.Stop()
    lastWrite := time.Now()
    for {
        var msg []byte
        select {
        case <-ctx.Done():
            return nil
        case b, ok := <-updates:
            if !ok {
                return nil
            }
            msg = b
        case msg = <-replies:
        case <-ticker.C:
            if time.Since(lastWrite) < idle {
                continue
            }
            msg = pingFrame
        }
        if len(msg) == 0 {
            continue
        }
        if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
            return err
        }
        lastWrite = time.Now()
    }
}
