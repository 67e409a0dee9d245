package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"querydraft/ai"
	"querydraft/cache"
	"querydraft/config"
	"querydraft/db"
	"querydraft/handlers"
	"querydraft/metrics"
	"querydraft/service"
	"querydraft/session"
)

const shutdownTimeout = 15 * time.Second

var (
	servePort string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				cfg.Port = servePort
			}
			return runServe(cmd.Context(), cfg)
		},
	}
)

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Listen port (overrides PORT)")
}

// closer releases a collaborator's resources on shutdown.
type closer func() error

func buildGenerator(gc config.GeneratorConfig, files ai.SQLFileSource) (session.Generator, closer, error) {
	opts := ai.Options{
		APIKey:            gc.APIKey,
		Model:             gc.Model,
		BaseURL:           gc.BaseURL,
		RequestsPerSecond: gc.RequestsPerSecond,
		Burst:             gc.Burst,
		MaxRetries:        gc.MaxRetries,
		Timeout:           gc.Timeout,
	}
	draftCache := cache.NewWithTTL(gc.CacheTTL, 2*gc.CacheTTL)

	switch gc.Provider {
	case "dashscope":
		svc, err := ai.New(opts, draftCache, files)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize DashScope: %w", err)
		}
		return svc, svc.Close, nil
	case "openai":
		gen, err := ai.NewOpenAIGenerator(opts, draftCache, files)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		return gen, func() error { return nil }, nil
	default:
		log.Warn().Str("component", "cli").Dur("delay", gc.StubDelay).Msg("using stub generator")
		return ai.NewStubGenerator(gc.StubDelay), func() error { return nil }, nil
	}
}

func buildExecutor(c config.Config, storage *service.ResultsStorage) (session.Executor, closer, error) {
	switch c.Executor.Driver {
	case "sqlserver":
		exec, err := service.NewSQLServerService(c.SQLServer, storage, c.ResultsFormat)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQL Server service: %w", err)
		}
		return exec, exec.Close, nil
	case "sqlite":
		exec, err := service.NewSQLiteService(c.Executor.SQLitePath, storage, c.ResultsFormat)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQLite service: %w", err)
		}
		return exec, exec.Close, nil
	default:
		log.Warn().Str("component", "cli").Dur("delay", c.Executor.StubDelay).Msg("using stub executor")
		return service.NewStubExecutor(c.Executor.StubDelay), func() error { return nil }, nil
	}
}

func runServe(ctx context.Context, c config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	database, err := db.New(c.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	if n, err := database.ImportSQLDir(c.SQLFilesDir); err != nil {
		log.Warn().Err(err).Str("component", "cli").Str("dir", c.SQLFilesDir).Msg("failed to load SQL files")
	} else {
		log.Info().Str("component", "cli").Int("files", n).Msg("loaded SQL files into database")
	}

	var storage *service.ResultsStorage
	if c.ResultsFormat != "none" {
		storage, err = service.NewResultsStorage(c.ResultsDir)
		if err != nil {
			return fmt.Errorf("failed to initialize results storage: %w", err)
		}
	}

	gen, closeGen, err := buildGenerator(c.Generator, database)
	if err != nil {
		return err
	}
	defer closeGen()

	exec, closeExec, err := buildExecutor(c, storage)
	if err != nil {
		return err
	}
	defer closeExec()

	recorder := database.HistoryObserver()
	defer recorder.Close()

	hub := handlers.NewHub()
	manager := session.NewManager(gen, exec, session.ManagerOptions{
		Feedback:              database,
		Observers:             []session.Observer{recorder, metrics.Observer, hub},
		KeepStateOnRegenerate: c.Session.KeepStateOnRegenerate,
	})

	gin.SetMode(gin.ReleaseMode)
	h := handlers.New(manager, database, storage, exec, hub, c.SQLFilesDir)
	srv := &http.Server{
		Addr:              ":" + c.Port,
		Handler:           handlers.NewRouter(h, c.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("component", "cli").Str("addr", srv.Addr).
			Str("generator", c.Generator.Provider).Str("executor", c.Executor.Driver).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Str("component", "cli").Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		drained := make(chan struct{})
		go func() {
			manager.Wait()
			close(drained)
		}()
		select {
		case <-drained:
		case <-shutdownCtx.Done():
			log.Warn().Str("component", "cli").Msg("gave up waiting for in-flight operations")
		}
		return err
	})

	return g.Wait()
}
