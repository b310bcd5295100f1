package ai

import (
    "errors"
    "strings"
)

// Difficulty selects the strategy used to pick the AI's move.
type Difficulty string

const (
    Easy   Difficulty = "easy"
    Medium Difficulty = "medium"
    Hard   Difficulty = "hard"
)

// Difficulties lists the tiers in increasing strength.
var Difficulties = []Difficulty{Easy, Medium, Hard}

var ErrUnknownDifficulty = errors.New("unknown difficulty")

// ParseDifficulty maps a case-insensitive name to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
    switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
    case Easy:
        return Easy, nil
    case Medium:
        return Medium, nil
    case Hard:
        return Hard, nil
    }
    return "", ErrUnknownDifficulty
}

func (d Difficulty) String() string { return string(d) }
