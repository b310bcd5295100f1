package main

import (
    "context"
    "errors"
    "log"
    "net"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/jaminalder/slide-tac-toe/internal/analytics"
    "github.com/jaminalder/slide-tac-toe/internal/app"
    "github.com/jaminalder/slide-tac-toe/internal/config"
    "github.com/jaminalder/slide-tac-toe/internal/settings"
    "github.com/jaminalder/slide-tac-toe/internal/web"
)

func main() {
    os.Exit(run())
}

// run returns the exit code once the deferred closes have flushed.
func run() int {
    cfg, err := config.Load()
    if err != nil {
        log.Printf("config: %v", err)
        return 1
    }

    var store settings.Store = settings.NewMemoryStore()
    if cfg.PostgresURL != "" {
        pg, err := settings.NewPostgresStore(context.Background(), cfg.PostgresURL)
        if err != nil {
            log.Printf("postgres disabled: %v", err)
        } else {
            if err := pg.EnsureTables(context.Background()); err != nil {
                log.Printf("postgres ensure tables failed: %v", err)
            }
            defer pg.Close()
            store = pg
        }
    }

    svcCfg := app.Config{AIDelay: cfg.AIDelay}
    if producer := analytics.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic); producer != nil {
        defer producer.Close()
        svcCfg.Events = producer
    }
    svc := app.NewService(svcCfg)

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    defaults := settings.Default()
    defaults.Mode = cfg.DefaultMode
    defaults.Difficulty = cfg.DefaultDifficulty
    srv := &http.Server{
        Addr: cfg.Addr,
        Handler: web.NewServer(svc, web.Options{
            Settings:  store,
            Defaults:  defaults,
            Heartbeat: cfg.HeartbeatInterval,
        }),
        ReadHeaderTimeout: 10 * time.Second,
        // Streams end with the process context.
        BaseContext: func(net.Listener) context.Context { return ctx },
    }

    done := make(chan struct{})
    go func() {
        defer close(done)
        <-ctx.Done()
        shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        if err := srv.Shutdown(shutdownCtx); err != nil {
            log.Printf("shutdown: %v", err)
        }
    }()

    log.Printf("server listening on %s", cfg.Addr)
    if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
        log.Printf("listen: %v", err)
        return 1
    }
    <-done
    return 0
}
