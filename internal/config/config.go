// Package config reads server configuration from the environment.
package config

import (
    "fmt"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/jaminalder/slide-tac-toe/internal/ai"
    "github.com/jaminalder/slide-tac-toe/internal/app"
)

type Config struct {
    Addr              string
    AIDelay           time.Duration
    DefaultMode       app.Mode
    DefaultDifficulty ai.Difficulty
    HeartbeatInterval time.Duration
    PostgresURL       string
    KafkaBrokers      []string
    KafkaTopic        string
}

// Load reads the process environment.
func Load() (Config, error) {
    return LoadFrom(os.LookupEnv)
}

// LoadFrom reads configuration through lookup.
//
//  PORT / ADDR          listen address (PORT wins, as set by most PaaS hosts)
//  AI_DELAY             pause before the computer moves, e.g. 400ms
//  DEFAULT_MODE         pvp | cpu
//  DEFAULT_DIFFICULTY   easy | medium | hard
//  HEARTBEAT_INTERVAL   SSE keepalive period
//  POSTGRES_URL         enables persisted settings
//  KAFKA_BROKERS        comma separated; enables event publishing
//  KAFKA_TOPIC          defaults to game-events
func LoadFrom(lookup func(string) (string, bool)) (Config, error) {
    get := func(key, fallback string) string {
        if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
            return strings.TrimSpace(v)
        }
        return fallback
    }

    cfg := Config{
        Addr:        get("ADDR", ":8080"),
        PostgresURL: get("POSTGRES_URL", ""),
        KafkaTopic:  get("KAFKA_TOPIC", "game-events"),
    }
    if port := get("PORT", ""); port != "" {
        cfg.Addr = ":" + port
    }

    var err error
    if cfg.AIDelay, err = duration(get("AI_DELAY", "400ms")); err != nil {
        return Config{}, fmt.Errorf("AI_DELAY: %w", err)
    }
    if cfg.HeartbeatInterval, err = duration(get("HEARTBEAT_INTERVAL", "15s")); err != nil {
        return Config{}, fmt.Errorf("HEARTBEAT_INTERVAL: %w", err)
    }
    if cfg.HeartbeatInterval <= 0 {
        return Config{}, fmt.Errorf("HEARTBEAT_INTERVAL: must be positive")
    }
    if cfg.DefaultMode, err = app.ParseMode(get("DEFAULT_MODE", string(app.ModePVP))); err != nil {
        return Config{}, fmt.Errorf("DEFAULT_MODE: %w", err)
    }
    if cfg.DefaultDifficulty, err = ai.ParseDifficulty(get("DEFAULT_DIFFICULTY", string(ai.Medium))); err != nil {
        return Config{}, fmt.Errorf("DEFAULT_DIFFICULTY: %w", err)
    }
    for _, b := range strings.Split(get("KAFKA_BROKERS", ""), ",") {
        if b = strings.TrimSpace(b); b != "" {
            cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
        }
    }
    return cfg, nil
}

// duration accepts Go duration syntax or a bare number of milliseconds.
func duration(v string) (time.Duration, error) {
    d, err := time.ParseDuration(v)
    if ms, aerr := strconv.Atoi(v); aerr == nil {
        d, err = time.Duration(ms)*time.Millisecond, nil
    }
    if err != nil {
        return 0, err
    }
    if d < 0 {
        return 0, fmt.Errorf("negative duration %q", v)
    }
    return d, nil
}
