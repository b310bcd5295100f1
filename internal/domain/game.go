package domain

import "errors"

// Cell represents a board cell state.
type Cell uint8

const (
    Empty Cell = iota
    X
    O
)

// Opponent returns the other side; Empty stays Empty.
func (c Cell) Opponent() Cell {
    switch c {
    case X:
        return O
    case O:
        return X
    }
    return Empty
}

func (c Cell) String() string {
    switch c {
    case X:
        return "X"
    case O:
        return "O"
    }
    return ""
}

// Board is a fixed 3x3 board stored row-major.
type Board [9]Cell

// Game holds the current state of a sliding Tic-Tac-Toe match.
type Game struct {
    Board     Board
    Positions Positions
    Turn      Cell
    Winner    Cell
    Line      Line
    Over      bool
    Moves     int
}

// Errors returned by domain operations.
var (
    ErrOutOfBounds = errors.New("index out of range")
    ErrOccupied    = errors.New("cell occupied")
    ErrGameOver    = errors.New("game already decided")
)

// New returns a new game with X to move.
func New() Game {
    return Game{Turn: X}
}

// Play attempts to play the current turn at row r, column c (0..2).
func (g *Game) Play(r, c int) error {
    if g.Over {
        return ErrGameOver
    }
    if r < 0 || r > 2 || c < 0 || c > 2 {
        return ErrOutOfBounds
    }
    return g.PlayIndex(r*3 + c)
}

// PlayIndex attempts to play the current turn at board index idx.
func (g *Game) PlayIndex(idx int) error {
    if g.Over {
        return ErrGameOver
    }
    if idx < 0 || idx >= len(g.Board) {
        return ErrOutOfBounds
    }
    if g.Board[idx] != Empty {
        return ErrOccupied
    }

    g.Board, g.Positions = ApplyMove(g.Board, g.Positions, g.Turn, idx)
    g.Moves++

    if res, ok := CalculateWinner(g.Board); ok {
        g.Winner = res.Winner
        g.Line = res.Line
        g.Over = true
        return nil
    }

    if IsDraw(g.Board) {
        g.Winner = Empty
        g.Over = true
        return nil
    }

    g.Turn = g.Turn.Opponent()
    return nil
}

// Result returns the winning line once the game has a winner.
func (g Game) Result() (WinResult, bool) {
    if !g.Over || g.Winner == Empty {
        return WinResult{}, false
    }
    return WinResult{Winner: g.Winner, Line: g.Line}, true
}

// Draw reports a finished game without a winner.
func (g Game) Draw() bool {
    return g.Over && g.Winner == Empty
}
