package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/joestump/sitekit/internal/analytics"
	"github.com/joestump/sitekit/internal/config"
	"github.com/joestump/sitekit/internal/consent"
	"github.com/joestump/sitekit/internal/db"
	"github.com/joestump/sitekit/internal/handler"
	"github.com/joestump/sitekit/internal/kv"
	"github.com/joestump/sitekit/internal/session"
	"github.com/joestump/sitekit/internal/store"
	"github.com/joestump/sitekit/internal/visitor"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := config.NewLogger(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var database *sqlx.DB
			if cfg.HasDB() {
				database, err = db.New(cfg.DB.Driver, cfg.DB.DSN)
				if err != nil {
					return err
				}
				defer func() { _ = database.Close() }()

				if err := db.Migrate(database, cfg.DB.Driver); err != nil {
					return err
				}
			}

			secure := !cfg.HTTP.InsecureCookies
			var sessionManager *scs.SessionManager
			if cfg.Storage.Backend == config.BackendSession {
				sessionManager = session.NewManager(database, cfg.DB.Driver, cfg.SessionLifetime, secure)
			}

			backend, closeBackend, err := newBackend(ctx, cfg, database, sessionManager)
			if err != nil {
				return err
			}
			defer closeBackend()

			// Consent reports are written to the audit trail by a background
			// writer so requests never wait on the insert. It is stopped after
			// the HTTP server so in-flight requests can still enqueue.
			var recorder consent.Reporter
			var reportStore *store.ReportStore
			stopWriter := func() {}
			if database != nil {
				reportStore = store.NewReportStore(database)
				rec := analytics.NewRecorder(cfg.ReportBuffer, log)
				recorder = rec
				writerDone := make(chan struct{})
				go func() {
					defer close(writerDone)
					rec.Run(context.Background(), reportStore)
				}()
				stopWriter = func() {
					rec.Close()
					<-writerDone
				}
			}

			router := handler.NewRouter(handler.Deps{
				SessionManager: sessionManager,
				Visitor:        visitor.NewMiddleware(secure, int(cfg.VisitorMaxAge.Seconds())),
				Backend:        backend,
				ReportStore:    reportStore,
				Pager: handler.PagerOptions{
					Sizer:            cfg.Pager.Sizer(),
					Labels:           cfg.Pager.Labels,
					QueryURLTemplate: cfg.Pager.QueryURLTemplate,
					RefreshDelay:     cfg.Pager.RefreshDelay,
					MaxPages:         cfg.Pager.MaxPages,
				},
				Consent: handler.ConsentOptions{
					Categories:     cfg.Consent.Categories,
					CompleteOnSave: cfg.Consent.CompleteOnSave,
					Recorder:       recorder,
				},
				DefaultTheme:  cfg.DefaultTheme,
				SecureCookies: secure,
				CORSOrigins:   cfg.CORSOrigins,
				Logger:        log,
			})

			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", cfg.HTTP.Addr).Str("storage", cfg.Storage.Backend).Msg("listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				stopWriter()
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("http shutdown")
			}
			stopWriter()
			return nil
		},
	}
}

// newBackend builds the visitor storage selected by storage.backend.
func newBackend(ctx context.Context, cfg *config.Config, database *sqlx.DB, sm *scs.SessionManager) (kv.Backend, func(), error) {
	noop := func() {}
	switch cfg.Storage.Backend {
	case config.BackendSession:
		return kv.NewSessionBackend(sm), noop, nil
	case config.BackendSQL:
		return kv.NewSQLBackend(store.NewKVStore(database)), noop, nil
	case config.BackendRedis:
		client, err := kv.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, noop, err
		}
		return kv.NewRedisBackend(client, cfg.Redis.TTL), func() { _ = client.Close() }, nil
	case config.BackendMemory:
		return kv.NewMemoryBackend(), noop, nil
	case config.BackendNone:
		return kv.BackendFunc(func(string) kv.Store { return kv.Unavailable{} }), noop, nil
	default:
		return nil, noop, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}
