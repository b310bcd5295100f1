package web

import (
    "encoding/json"
    "log"

    "github.com/jaminalder/slide-tac-toe/internal/app"
    "github.com/jaminalder/slide-tac-toe/internal/domain"
    "github.com/jaminalder/slide-tac-toe/internal/i18n"
    "github.com/jaminalder/slide-tac-toe/internal/settings"
)

// stateDTO is the JSON form of a game shared by /state and the websocket.
type stateDTO struct {
    ID         string           `json:"id"`
    Board      [9]string        `json:"board"`
    Positions  map[string][]int `json:"positions"`
    Turn       string           `json:"turn"`
    Winner     string           `json:"winner,omitempty"`
    Line       []int            `json:"line,omitempty"`
    Draw       bool             `json:"draw"`
    Over       bool             `json:"over"`
    Moves      int              `json:"moves"`
    Mode       app.Mode         `json:"mode"`
    Difficulty string           `json:"difficulty,omitempty"`
    AI         string           `json:"ai,omitempty"`
    Thinking   bool             `json:"thinking"`
    // Vanishing is the piece the side to move loses on its next placement, or -1.
    Vanishing int `json:"vanishing"`
}

func newStateDTO(gs app.GameState) stateDTO {
    g := gs.Game
    dto := stateDTO{
        ID:   gs.ID,
        Turn: g.Turn.String(),
        Positions: map[string][]int{
            "X": append([]int{}, g.Positions.X...),
            "O": append([]int{}, g.Positions.O...),
        },
        Draw:      g.Draw(),
        Over:      g.Over,
        Moves:     g.Moves,
        Mode:      gs.Mode,
        Thinking:  gs.Thinking,
        Vanishing: vanishing(gs),
    }
    for i, c := range g.Board {
        dto.Board[i] = c.String()
    }
    if res, ok := g.Result(); ok {
        dto.Winner = res.Winner.String()
        dto.Line = res.Line[:]
    }
    if gs.Mode == app.ModeCPU {
        dto.Difficulty = string(gs.Difficulty)
        dto.AI = gs.AI.String()
    }
    return dto
}

func vanishing(gs app.GameState) int {
    if gs.Game.Over {
        return -1
    }
    idx, ok := gs.Game.Positions.Oldest(gs.Game.Turn)
    if !ok {
        return -1
    }
    return idx
}

// wsMessage is a server to client websocket frame.
type wsMessage struct {
    Type    string    `json:"type"`
    State   *stateDTO `json:"state,omitempty"`
    Error   string    `json:"error,omitempty"`
    Message string    `json:"message,omitempty"`
}

// renderState is the broadcast renderer: every subscriber gets a state frame.
func renderState(gs app.GameState) []byte {
    dto := newStateDTO(gs)
    b, err := json.Marshal(wsMessage{Type: "state", State: &dto})
    if err != nil {
        log.Printf("encode state %s: %v", gs.ID, err)
        return nil
    }
    return b
}

type cellView struct {
    Row, Col int
    Mark     string
    Win      bool
    Fading   bool
    Playable bool
}

type boardView struct {
    ID       string
    Lang     i18n.Lang
    Cells    []cellView
    Status   string
    Error    string
    Controls bool
    Over     bool
    Mode     app.Mode
}

// newBoardView prepares gs for the board template as seen by a viewer who
// owns the game (controls) or only watches it.
func newBoardView(gs app.GameState, lang i18n.Lang, controls bool, errMsg string) boardView {
    g := gs.Game
    res, won := g.Result()
    fading := vanishing(gs)
    canMove := controls && !g.Over && !gs.Thinking && !gs.AITurn()
    v := boardView{
        ID:       gs.ID,
        Lang:     lang,
        Cells:    make([]cellView, 0, len(g.Board)),
        Status:   status(gs, lang),
        Error:    errMsg,
        Controls: controls,
        Over:     g.Over,
        Mode:     gs.Mode,
    }
    for i, c := range g.Board {
        cv := cellView{
            Row:      i / 3,
            Col:      i % 3,
            Mark:     c.String(),
            Fading:   i == fading,
            Playable: canMove && c == domain.Empty,
        }
        if won {
            for _, w := range res.Line {
                if w == i {
                    cv.Win = true
                }
            }
        }
        v.Cells = append(v.Cells, cv)
    }
    return v
}

func status(gs app.GameState, lang i18n.Lang) string {
    g := gs.Game
    if res, ok := g.Result(); ok {
        return i18n.Tf(lang, "win", sideName(gs, res.Winner, lang))
    }
    if g.Draw() {
        return i18n.T(lang, "draw")
    }
    if gs.Thinking {
        return i18n.T(lang, "thinking")
    }
    return i18n.Tf(lang, "turn", sideName(gs, g.Turn, lang))
}

func sideName(gs app.GameState, side domain.Cell, lang i18n.Lang) string {
    if gs.Mode == app.ModeCPU && side == gs.AI {
        return i18n.T(lang, "machine")
    }
    return side.String()
}

// page carries what the base layout needs.
type page struct {
    Lang  i18n.Lang
    Theme settings.Theme
    Prefs settings.Preferences
}

func newPage(p settings.Preferences) page {
    return page{Lang: p.Lang, Theme: p.Theme, Prefs: p}
}
