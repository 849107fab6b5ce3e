package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"commentflow/config"
	dbpkg "commentflow/db"
	"commentflow/engine"
	"commentflow/logging"
	"commentflow/router"
	"commentflow/tools"
	"commentflow/workers"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook and configuration API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg config.Configuration, logger *logging.Logger) error {
	database, err := dbpkg.Connect(cfg, logger.Named("db"))
	if err != nil {
		return err
	}
	defer database.Close()
	if err := dbpkg.Migrate(database); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	store := dbpkg.NewStore(database)

	graph := tools.NewGraphClient(cfg.Graph.BaseURL, cfg.Graph.ApiVersion, cfg.GraphTimeout())

	execOpts := []engine.ExecutorOption{
		engine.WithCallTimeout(cfg.GraphTimeout()),
		engine.WithFollowUpScheduler(workers.NewFollowUpLogger(logger.Named("follow-up"))),
		engine.WithExecutorLogger(logger.Named("executor")),
	}
	if strings.TrimSpace(cfg.OpenAI.ApiKey) != "" {
		execOpts = append(execOpts, engine.WithReplier(tools.NewOpenAIReplier(cfg.OpenAI.ApiKey, cfg.OpenAI.Model)))
	} else {
		logger.Warn("openai.api_key not set, AI replies will fail")
	}
	executor := engine.NewExecutor(graph, execOpts...)

	dispatcher := engine.NewDispatcher(store, store, executor,
		engine.WithRunRecorder(store),
		engine.WithRecentEvents(engine.NewRecentEvents(cfg.DedupWindow(), cfg.Dedup.MaxEntries)),
		engine.WithDispatcherLogger(logger.Named("dispatcher")),
	)

	pool := workers.NewPool(cfg.Workers.Size, cfg.Workers.QueueSize, cfg.EventTimeout(), logger.Named("workers"))
	pool.SetEnqueueWait(cfg.EnqueueWait())
	pool.Start()
	defer pool.Stop()

	gateway := engine.NewGateway(engine.GatewayConfig{
		VerifyToken: cfg.Webhook.VerifyToken,
		AppSecret:   cfg.Webhook.AppSecret,
		Object:      cfg.Webhook.Object,
	}, dispatcher, engine.WithRunner(pool), engine.WithGatewayLogger(logger.Named("gateway")))

	if logging.ParseLevel(cfg.LogLevel) > logging.ParseLevel("debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	router.Initialize(r, cfg, router.Dependencies{
		DB:         database,
		Gateway:    gateway,
		Subscriber: graph,
		Logger:     logger.Named("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ApiPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "port", cfg.ApiPort)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
