// Package ai picks moves for the computer side of a sliding Tic-Tac-Toe game.
// Every strategy works on copies: candidate moves are simulated with
// domain.ApplyMove and judged with domain.CalculateWinner.
package ai

import (
    "math/rand/v2"
    "slices"
    "sync"

    "github.com/jaminalder/slide-tac-toe/internal/domain"
)

// PreferenceOrder ranks cells when no tactical move exists: center, corners, edges.
var PreferenceOrder = [9]int{4, 0, 2, 6, 8, 1, 3, 5, 7}

// Picker chooses moves for a difficulty. Safe for concurrent use.
type Picker struct {
    mu  sync.Mutex
    rng *rand.Rand
}

// NewPicker returns a picker drawing from rng; nil seeds a fresh source.
func NewPicker(rng *rand.Rand) *Picker {
    if rng == nil {
        rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
    }
    return &Picker{rng: rng}
}

// PickMove returns the index ai should play, or false when the board has no
// empty cell.
func (p *Picker) PickMove(b domain.Board, pos domain.Positions, ai domain.Cell, d Difficulty) (int, bool) {
    switch d {
    case Easy:
        p.mu.Lock()
        defer p.mu.Unlock()
        return RandomMove(b, p.rng)
    case Medium:
        return HeuristicMove(b, pos, ai)
    case Hard:
        return HardMove(b, pos, ai)
    default:
        // Unknown tiers play like Medium.
        return HeuristicMove(b, pos, ai)
    }
}

// RandomMove picks uniformly among the empty cells.
func RandomMove(b domain.Board, rng *rand.Rand) (int, bool) {
    empties := domain.EmptyIndices(b)
    if len(empties) == 0 {
        return -1, false
    }
    return empties[rng.IntN(len(empties))], true
}

// HeuristicMove wins if it can, blocks if it must, otherwise takes the
// first free cell in PreferenceOrder.
func HeuristicMove(b domain.Board, pos domain.Positions, ai domain.Cell) (int, bool) {
    empties := domain.EmptyIndices(b)
    if len(empties) == 0 {
        return -1, false
    }
    if idx, ok := tactical(b, pos, ai, empties); ok {
        return idx, true
    }
    if idx, ok := preferred(empties); ok {
        return idx, true
    }
    return empties[0], true
}

// HardMove adds a one-ply safety check to HeuristicMove: among non-tactical
// candidates it only considers cells after which no single opponent reply
// wins. Without a safe cell it falls back to HeuristicMove.
func HardMove(b domain.Board, pos domain.Positions, ai domain.Cell) (int, bool) {
    empties := domain.EmptyIndices(b)
    if len(empties) == 0 {
        return -1, false
    }
    if idx, ok := tactical(b, pos, ai, empties); ok {
        return idx, true
    }

    var safe []int
    for _, idx := range empties {
        if isSafe(b, pos, ai, idx) {
            safe = append(safe, idx)
        }
    }
    if len(safe) > 0 {
        if idx, ok := preferred(safe); ok {
            return idx, true
        }
        return safe[0], true
    }
    return HeuristicMove(b, pos, ai)
}

// tactical returns an immediately winning cell for ai, else a cell that
// blocks the opponent's immediate win.
func tactical(b domain.Board, pos domain.Positions, ai domain.Cell, empties []int) (int, bool) {
    if idx, ok := winningCell(b, pos, ai, empties); ok {
        return idx, true
    }
    return winningCell(b, pos, ai.Opponent(), empties)
}

func winningCell(b domain.Board, pos domain.Positions, side domain.Cell, empties []int) (int, bool) {
    for _, idx := range empties {
        if wins(b, pos, side, idx) {
            return idx, true
        }
    }
    return -1, false
}

func wins(b domain.Board, pos domain.Positions, side domain.Cell, idx int) bool {
    next, _ := domain.ApplyMove(b, pos, side, idx)
    res, ok := domain.CalculateWinner(next)
    return ok && res.Winner == side
}

// isSafe reports whether ai playing idx leaves the opponent without a
// winning reply. Both moves slide, so ai's eviction may reopen a line.
func isSafe(b domain.Board, pos domain.Positions, ai domain.Cell, idx int) bool {
    nb, npos := domain.ApplyMove(b, pos, ai, idx)
    opp := ai.Opponent()
    for _, reply := range domain.EmptyIndices(nb) {
        if wins(nb, npos, opp, reply) {
            return false
        }
    }
    return true
}

func preferred(candidates []int) (int, bool) {
    for _, idx := range PreferenceOrder {
        if slices.Contains(candidates, idx) {
            return idx, true
        }
    }
    return -1, false
}
