package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JesusVicken/brain-school/internal/config"
	"github.com/JesusVicken/brain-school/internal/generator"
	"github.com/JesusVicken/brain-school/internal/infra/memory"
	redisstore "github.com/JesusVicken/brain-school/internal/infra/redis"
	"github.com/JesusVicken/brain-school/internal/logging"
	"github.com/JesusVicken/brain-school/internal/session"
	transport "github.com/JesusVicken/brain-school/internal/transport/http"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.New(cfg.Log.Level)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	apiKey := cfg.APIKeyOrEnv()
	genLog := logging.WithComponent(log, "generator")

	var provider generator.Provider
	switch cfg.Generator.Provider {
	case "openai":
		provider = generator.NewOpenAI(apiKey, cfg.Generator.Model, genLog)
	case "groq":
		provider = generator.NewGroq(apiKey, cfg.Generator.Model, cfg.Generator.BaseURL, genLog)
	case "gemini":
		provider, err = generator.NewGemini(ctx, apiKey, cfg.Generator.Model, genLog)
		if err != nil {
			return err
		}
	case "mock", "":
		provider = nil
	default:
		return fmt.Errorf("unknown generator provider %q", cfg.Generator.Provider)
	}
	if provider != nil && apiKey == "" {
		// absence of a credential is a mode switch, not an error
		log.Infof("no API key for provider %q, switching to mock generator", cfg.Generator.Provider)
		provider = nil
	}

	mock := generator.Mock{Delay: config.TTLDuration(cfg.Generator.MockDelay, time.Second)}
	cacheTTL := config.TTLDuration(cfg.Generator.CacheTTL, 5*time.Minute)
	gen := generator.NewService(provider, mock, cfg.FallbackEnabled(), cacheTTL, genLog)

	opts := session.Options{
		AdvanceDelay: config.TTLDuration(cfg.Session.AdvanceDelay, 1500*time.Millisecond),
		Tick:         config.TTLDuration(cfg.Session.Tick, time.Second),
	}
	sessionLog := logging.WithComponent(log, "session")
	factory := func(runID string) *session.Run {
		return session.NewRun(runID, gen, opts, sessionLog)
	}

	var runs session.RunRepository
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ttl := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
		runs = redisstore.NewRunStore(client, ttl, factory)
	} else {
		runs = memory.NewRunStore(factory)
	}

	wsHandler := transport.NewWSHandler(runs, logging.WithComponent(log, "ws"))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Infof("starting quizzbrain on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
