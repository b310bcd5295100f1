package domain

// MaxPieces is how many marks a player may have on the board at once.
const MaxPieces = 3

// Line is an ordered triple of board indices.
type Line [3]int

// WinLines lists every line in scan order: rows, columns, then diagonals.
var WinLines = [8]Line{
    // rows
    {0, 1, 2}, {3, 4, 5}, {6, 7, 8},
    // cols
    {0, 3, 6}, {1, 4, 7}, {2, 5, 8},
    // diags
    {0, 4, 8}, {2, 4, 6},
}

// WinResult names the winning side and the completed line.
type WinResult struct {
    Winner Cell
    Line   Line
}

// Positions tracks, per side, the occupied indices oldest first.
type Positions struct {
    X []int
    O []int
}

// Of returns the placement list for side.
func (p Positions) Of(side Cell) []int {
    switch side {
    case X:
        return p.X
    case O:
        return p.O
    }
    return nil
}

// Clone returns a deep copy.
func (p Positions) Clone() Positions {
    return Positions{X: append([]int(nil), p.X...), O: append([]int(nil), p.O...)}
}

// Oldest reports the index that will vanish on side's next placement.
func (p Positions) Oldest(side Cell) (int, bool) {
    list := p.Of(side)
    if len(list) < MaxPieces {
        return -1, false
    }
    return list[0], true
}

// CalculateWinner returns the first completed line in WinLines order.
func CalculateWinner(b Board) (WinResult, bool) {
    for _, ln := range WinLines {
        c := b[ln[0]]
        if c != Empty && c == b[ln[1]] && c == b[ln[2]] {
            return WinResult{Winner: c, Line: ln}, true
        }
    }
    return WinResult{}, false
}

// EmptyIndices lists the empty cells in ascending order.
func EmptyIndices(b Board) []int {
    out := make([]int, 0, len(b))
    for i, c := range b {
        if c == Empty {
            out = append(out, i)
        }
    }
    return out
}

// IsDraw reports a full board with no winner.
func IsDraw(b Board) bool {
    for _, c := range b {
        if c == Empty {
            return false
        }
    }
    _, won := CalculateWinner(b)
    return !won
}

// ApplyMove places side at idx and returns the resulting board and positions.
// It does not validate: idx must be in range and empty. When side already has
// MaxPieces marks its oldest one is cleared before the new mark is written.
// Inputs are left untouched.
func ApplyMove(b Board, pos Positions, side Cell, idx int) (Board, Positions) {
    next := pos.Clone()
    list := next.Of(side)
    if len(list) >= MaxPieces {
        b[list[0]] = Empty
        list = list[1:]
    }
    b[idx] = side
    list = append(list, idx)
    switch side {
    case X:
        next.X = list
    case O:
        next.O = list
    }
    return b, next
}
