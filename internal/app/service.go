package app

import (
    "context"
    "errors"
    "log"
    "strings"
    "sync"
    "time"

    "github.com/google/uuid"
    "github.com/jaminalder/slide-tac-toe/internal/ai"
    "github.com/jaminalder/slide-tac-toe/internal/domain"
)

// Errors exposed by the service layer.
var (
    ErrNotFound    = errors.New("game not found")
    ErrNotYourTurn = errors.New("not your turn")
    ErrNotAPlayer  = errors.New("not a player")
    ErrUnknownMode = errors.New("unknown mode")
)

// Mode says who plays the second side.
type Mode string

const (
    ModePVP Mode = "pvp" // two players sharing one device
    ModeCPU Mode = "cpu"
)

// ParseMode accepts "pvp" or "cpu" in any case.
func ParseMode(s string) (Mode, error) {
    switch Mode(strings.ToLower(strings.TrimSpace(s))) {
    case ModePVP:
        return ModePVP, nil
    case ModeCPU:
        return ModeCPU, nil
    }
    return "", ErrUnknownMode
}

// Options are chosen when a game is created or reset.
type Options struct {
    Mode       Mode
    Difficulty ai.Difficulty
}

// EventPublisher receives game lifecycle events. Implementations must not block.
type EventPublisher interface {
    Publish(ctx context.Context, event string, payload map[string]any)
}

// MovePicker chooses the computer's move; *ai.Picker is the implementation.
type MovePicker interface {
    PickMove(b domain.Board, pos domain.Positions, side domain.Cell, d ai.Difficulty) (int, bool)
}

// Config tunes a Service. The zero value is usable.
type Config struct {
    // AI is the side the computer plays in ModeCPU; defaults to O.
    AI domain.Cell
    // AIDelay postpones the computer's reply; zero replies inline.
    AIDelay time.Duration
    Picker  MovePicker
    Events  EventPublisher
    Now     func() time.Time
}

// GameState is the in-memory state tracked per game.
type GameState struct {
    ID         string
    Owner      string
    Game       domain.Game
    Mode       Mode
    Difficulty ai.Difficulty
    AI         domain.Cell
    Thinking   bool
    Created    time.Time
    Updated    time.Time

    gen uint64
}

// AITurn reports whether the computer is the side to move.
func (gs GameState) AITurn() bool {
    return gs.Mode == ModeCPU && !gs.Game.Over && gs.Game.Turn == gs.AI
}

// subscriberBuffer is how many unread updates a subscriber may lag behind
// before it is dropped.
const subscriberBuffer = 4

type subscriber struct {
    ch        chan []byte
    closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service manages games and subscribers.
type Service struct {
    mu     sync.Mutex
    games  map[string]*GameState
    subs   map[string]map[*subscriber]struct{}
    render func(GameState) []byte

    aiSide  domain.Cell
    aiDelay time.Duration
    picker  MovePicker
    events  EventPublisher
    now     func() time.Time
}

type noopEvents struct{}

func (noopEvents) Publish(context.Context, string, map[string]any) {}

// NewService creates a service with a default renderer (encodes nothing useful).
func NewService(cfg Config) *Service {
    return NewServiceWithRenderer(cfg, func(gs GameState) []byte { return nil })
}

// NewServiceWithRenderer allows injecting a renderer for broadcast payloads.
func NewServiceWithRenderer(cfg Config, renderer func(GameState) []byte) *Service {
    if renderer == nil {
        renderer = func(gs GameState) []byte { return nil }
    }
    if cfg.AI != domain.X && cfg.AI != domain.O {
        cfg.AI = domain.O
    }
    if cfg.Picker == nil {
        cfg.Picker = ai.NewPicker(nil)
    }
    if cfg.Events == nil {
        cfg.Events = noopEvents{}
    }
    if cfg.Now == nil {
        cfg.Now = time.Now
    }
    return &Service{
        games:   make(map[string]*GameState),
        subs:    make(map[string]map[*subscriber]struct{}),
        render:  renderer,
        aiSide:  cfg.AI,
        aiDelay: cfg.AIDelay,
        picker:  cfg.Picker,
        events:  cfg.Events,
        now:     cfg.Now,
    }
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if renderer == nil {
        s.render = func(gs GameState) []byte { return nil }
        return
    }
    s.render = renderer
}

func normalize(opts Options) Options {
    if opts.Mode != ModeCPU {
        opts.Mode = ModePVP
    }
    if _, err := ai.ParseDifficulty(string(opts.Difficulty)); err != nil {
        opts.Difficulty = ai.Medium
    }
    return opts
}

// CreateGame creates and registers a new game owned by owner.
func (s *Service) CreateGame(owner string, opts Options) (*GameState, error) {
    opts = normalize(opts)
    s.mu.Lock()
    id := uuid.NewString()
    now := s.now()
    gs := &GameState{
        ID:         id,
        Owner:      owner,
        Game:       domain.New(),
        Mode:       opts.Mode,
        Difficulty: opts.Difficulty,
        AI:         s.aiSide,
        Created:    now,
        Updated:    now,
    }
    s.games[id] = gs
    cp := *gs
    s.mu.Unlock()

    s.events.Publish(context.Background(), "game_created", map[string]any{
        "game_id":    id,
        "mode":       string(opts.Mode),
        "difficulty": string(opts.Difficulty),
    })
    // The computer may move first when it plays X.
    s.scheduleAI(id)
    return s.snapshot(id, &cp), nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    gs, ok := s.games[id]
    if !ok {
        return nil, false
    }
    cp := *gs
    return &cp, true
}

// Join claims an unowned game for playerID and reports whether playerID
// controls it. Everyone else only watches.
func (s *Service) Join(id, playerID string) (bool, *GameState, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    gs, ok := s.games[id]
    if !ok {
        return false, nil, ErrNotFound
    }
    if gs.Owner == "" && playerID != "" {
        gs.Owner = playerID
        gs.Updated = s.now()
    }
    cp := *gs
    return gs.Owner == playerID, &cp, nil
}

// Play validates the player and turn, applies a move, and broadcasts. In
// ModeCPU the computer's reply is scheduled afterwards.
func (s *Service) Play(id, playerID string, r, c int) (*GameState, error) {
    s.mu.Lock()
    gs, ok := s.games[id]
    if !ok {
        s.mu.Unlock()
        return nil, ErrNotFound
    }
    if gs.Owner != playerID {
        s.mu.Unlock()
        return nil, ErrNotAPlayer
    }
    if gs.Thinking || gs.AITurn() {
        s.mu.Unlock()
        return nil, ErrNotYourTurn
    }
    side := gs.Game.Turn
    if err := gs.Game.Play(r, c); err != nil {
        s.mu.Unlock()
        return nil, err
    }
    gs.Updated = s.now()
    cp := *gs
    s.mu.Unlock()

    s.afterMove(cp, side, r*3+c)
    s.scheduleAI(id)
    return s.snapshot(id, &cp), nil
}

// PlayIndex is Play addressed by board index.
func (s *Service) PlayIndex(id, playerID string, idx int) (*GameState, error) {
    if idx < 0 || idx > 8 {
        return s.Play(id, playerID, -1, -1)
    }
    return s.Play(id, playerID, idx/3, idx%3)
}

// Reset starts a fresh board in the same game, with new options.
func (s *Service) Reset(id, playerID string, opts Options) (*GameState, error) {
    opts = normalize(opts)
    s.mu.Lock()
    gs, ok := s.games[id]
    if !ok {
        s.mu.Unlock()
        return nil, ErrNotFound
    }
    if gs.Owner != playerID {
        s.mu.Unlock()
        return nil, ErrNotAPlayer
    }
    gs.Game = domain.New()
    gs.Mode = opts.Mode
    gs.Difficulty = opts.Difficulty
    gs.Thinking = false
    gs.gen++
    gs.Updated = s.now()
    cp := *gs
    s.mu.Unlock()

    s.events.Publish(context.Background(), "game_reset", map[string]any{
        "game_id":    id,
        "mode":       string(opts.Mode),
        "difficulty": string(opts.Difficulty),
    })
    s.broadcast(id, cp)
    s.scheduleAI(id)
    return s.snapshot(id, &cp), nil
}

// snapshot returns the latest state, which may include an inline AI reply.
func (s *Service) snapshot(id string, fallback *GameState) *GameState {
    if gs, ok := s.Get(id); ok {
        return gs
    }
    return fallback
}

// scheduleAI arranges the computer's move when it is due. With no delay the
// move is applied before returning.
func (s *Service) scheduleAI(id string) {
    s.mu.Lock()
    gs, ok := s.games[id]
    if !ok || gs.Thinking || !gs.AITurn() {
        s.mu.Unlock()
        return
    }
    gen := gs.gen
    if s.aiDelay <= 0 {
        s.mu.Unlock()
        s.playAI(id, gen)
        return
    }
    gs.Thinking = true
    cp := *gs
    s.mu.Unlock()

    s.broadcast(id, cp)
    time.AfterFunc(s.aiDelay, func() { s.playAI(id, gen) })
}

// playAI picks and applies the computer's move unless the game moved on
// (reset) since it was scheduled.
func (s *Service) playAI(id string, gen uint64) {
    s.mu.Lock()
    gs, ok := s.games[id]
    if !ok || gs.gen != gen {
        s.mu.Unlock()
        return
    }
    gs.Thinking = false
    if !gs.AITurn() {
        s.mu.Unlock()
        return
    }
    side := gs.Game.Turn
    idx, ok := s.picker.PickMove(gs.Game.Board, gs.Game.Positions, side, gs.Difficulty)
    if !ok {
        cp := *gs
        s.mu.Unlock()
        s.broadcast(id, cp)
        return
    }
    if err := gs.Game.PlayIndex(idx); err != nil {
        cp := *gs
        s.mu.Unlock()
        log.Printf("game %s: computer move %d rejected: %v", id, idx, err)
        s.broadcast(id, cp)
        return
    }
    gs.Updated = s.now()
    cp := *gs
    s.mu.Unlock()

    s.afterMove(cp, side, idx)
}

// afterMove publishes events and broadcasts the new state.
func (s *Service) afterMove(gs GameState, side domain.Cell, idx int) {
    ctx := context.Background()
    s.events.Publish(ctx, "move_played", map[string]any{
        "game_id": gs.ID,
        "player":  side.String(),
        "index":   idx,
        "moves":   gs.Game.Moves,
        "ai":      gs.Mode == ModeCPU && side == gs.AI,
    })
    if gs.Game.Over {
        payload := map[string]any{
            "game_id":  gs.ID,
            "mode":     string(gs.Mode),
            "moves":    gs.Game.Moves,
            "winner":   gs.Game.Winner.String(),
            "duration": s.now().Sub(gs.Created).Seconds(),
        }
        if gs.Mode == ModeCPU {
            payload["difficulty"] = string(gs.Difficulty)
        }
        s.events.Publish(ctx, "game_finished", payload)
    }
    s.broadcast(gs.ID, gs)
}

// broadcast renders gs and fans it out; slow subscribers are dropped.
func (s *Service) broadcast(id string, gs GameState) {
    s.mu.Lock()
    defer s.mu.Unlock()
    set, ok := s.subs[id]
    if !ok {
        return
    }
    payload := s.render(gs)
    for sub := range set {
        select {
        case sub.ch <- payload:
        default:
            // drop slow subscriber
            sub.close()
            delete(set, sub)
        }
    }
}

// Subscribe registers a subscriber for a game. Returns a channel and an unsubscribe func.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func()) {
    s.mu.Lock()
    defer s.mu.Unlock()
    set := s.subs[id]
    if set == nil {
        set = make(map[*subscriber]struct{})
        s.subs[id] = set
    }
    sub := &subscriber{ch: make(chan []byte, subscriberBuffer)}
    set[sub] = struct{}{}

    unsubOnce := &sync.Once{}
    unsub := func() {
        unsubOnce.Do(func() {
            s.mu.Lock()
            if set, ok := s.subs[id]; ok {
                delete(set, sub)
                if len(set) == 0 {
                    delete(s.subs, id)
                }
            }
            s.mu.Unlock()
            sub.close()
        })
    }
    go func() {
        <-ctx.Done()
        unsub()
    }()
    return sub.ch, unsub
}
