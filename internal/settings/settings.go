// Package settings stores per-player preferences: theme, language, and the
// mode and difficulty new games start with.
package settings

import (
    "context"
    "errors"
    "sync"

    "github.com/jaminalder/slide-tac-toe/internal/ai"
    "github.com/jaminalder/slide-tac-toe/internal/app"
    "github.com/jaminalder/slide-tac-toe/internal/i18n"
)

// Theme is the UI colour scheme.
type Theme string

const (
    ThemeLight Theme = "light"
    ThemeDark  Theme = "dark"
)

var ErrUnknownTheme = errors.New("unknown theme")

// ParseTheme accepts "light" or "dark".
func ParseTheme(s string) (Theme, error) {
    switch Theme(s) {
    case ThemeLight, ThemeDark:
        return Theme(s), nil
    }
    return "", ErrUnknownTheme
}

// Preferences are the saved choices of one player.
type Preferences struct {
    Theme      Theme         `json:"theme"`
    Lang       i18n.Lang     `json:"lang"`
    Mode       app.Mode      `json:"mode"`
    Difficulty ai.Difficulty `json:"difficulty"`
}

// Default returns the preferences of a player who never saved any.
func Default() Preferences {
    return Preferences{
        Theme:      ThemeDark,
        Lang:       i18n.Default,
        Mode:       app.ModePVP,
        Difficulty: ai.Medium,
    }
}

// Store persists preferences keyed by player id.
type Store interface {
    // Get reports false when playerID never saved anything.
    Get(ctx context.Context, playerID string) (Preferences, bool, error)
    Save(ctx context.Context, playerID string, p Preferences) error
}

// MemoryStore keeps preferences in process memory.
type MemoryStore struct {
    mu    sync.RWMutex
    prefs map[string]Preferences
}

func NewMemoryStore() *MemoryStore {
    return &MemoryStore{prefs: make(map[string]Preferences)}
}

func (m *MemoryStore) Get(_ context.Context, playerID string) (Preferences, bool, error) {
    m.mu.RLock()
    defer m.mu.RUnlock()
    p, ok := m.prefs[playerID]
    return p, ok, nil
}

func (m *MemoryStore) Save(_ context.Context, playerID string, p Preferences) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.prefs[playerID] = p
    return nil
}
