package settings

import (
    "context"
    "errors"
    "fmt"

    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"

    "github.com/jaminalder/slide-tac-toe/internal/ai"
    "github.com/jaminalder/slide-tac-toe/internal/app"
    "github.com/jaminalder/slide-tac-toe/internal/i18n"
)

// PostgresStore keeps preferences in a player_settings table.
type PostgresStore struct {
    pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
    pool, err := pgxpool.New(ctx, url)
    if err != nil {
        return nil, fmt.Errorf("connect settings db: %w", err)
    }
    if err := pool.Ping(ctx); err != nil {
        pool.Close()
        return nil, fmt.Errorf("ping settings db: %w", err)
    }
    return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Close() {
    if p.pool != nil {
        p.pool.Close()
    }
}

func (p *PostgresStore) EnsureTables(ctx context.Context) error {
    _, err := p.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS player_settings (
	player_id TEXT PRIMARY KEY,
	theme TEXT NOT NULL,
	lang TEXT NOT NULL,
	mode TEXT NOT NULL,
	difficulty TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`)
    return err
}

func (p *PostgresStore) Get(ctx context.Context, playerID string) (Preferences, bool, error) {
    var theme, lang, mode, difficulty string
    err := p.pool.QueryRow(ctx, `
SELECT theme, lang, mode, difficulty FROM player_settings WHERE player_id = $1`, playerID).
        Scan(&theme, &lang, &mode, &difficulty)
    if errors.Is(err, pgx.ErrNoRows) {
        return Preferences{}, false, nil
    }
    if err != nil {
        return Preferences{}, false, fmt.Errorf("load settings: %w", err)
    }
    return decode(Default(), theme, lang, mode, difficulty), true, nil
}

func (p *PostgresStore) Save(ctx context.Context, playerID string, prefs Preferences) error {
    _, err := p.pool.Exec(ctx, `
INSERT INTO player_settings (player_id, theme, lang, mode, difficulty, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (player_id) DO UPDATE SET
	theme = EXCLUDED.theme,
	lang = EXCLUDED.lang,
	mode = EXCLUDED.mode,
	difficulty = EXCLUDED.difficulty,
	updated_at = now()`,
        playerID, string(prefs.Theme), string(prefs.Lang), string(prefs.Mode), string(prefs.Difficulty))
    if err != nil {
        return fmt.Errorf("save settings: %w", err)
    }
    return nil
}

// decode parses stored columns, keeping def for any value that no longer parses.
func decode(def Preferences, theme, lang, mode, difficulty string) Preferences {
    out := def
    if v, err := ParseTheme(theme); err == nil {
        out.Theme = v
    }
    if v, err := i18n.ParseLang(lang); err == nil {
        out.Lang = v
    }
    if v, err := app.ParseMode(mode); err == nil {
        out.Mode = v
    }
    if v, err := ai.ParseDifficulty(difficulty); err == nil {
        out.Difficulty = v
    }
    return out
}
