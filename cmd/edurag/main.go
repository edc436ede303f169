// Command edurag is a terminal client for the EduRAG tutoring platform:
// upload study materials, watch their processing status, ask questions
// about them, and rate the answers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/edurag/tutorcli/internal/api"
	"github.com/edurag/tutorcli/internal/config"
	"github.com/edurag/tutorcli/internal/history"
	"github.com/edurag/tutorcli/internal/logging"
	"github.com/edurag/tutorcli/internal/state"
	"github.com/edurag/tutorcli/internal/tracker"
)

var (
	configPath string
	baseURL    string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "edurag: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edurag",
		Short: "EduRAG terminal client",
		Long: `edurag talks to an EduRAG server: upload textbooks and study materials,
track their processing status, ask questions about them, and rate answers.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.edurag/config.yaml)")
	cmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Server base URL (overrides config)")
	cmd.AddCommand(
		newUploadCmd(),
		newMaterialsCmd(),
		newAskCmd(),
		newChatCmd(),
		newFeedbackCmd(),
		newHistoryCmd(),
		newStatsCmd(),
		newSubjectsCmd(),
		newGradesCmd(),
	)
	return cmd
}

// app bundles the long-lived pieces every command needs.
type app struct {
	cfg     *config.Config
	log     *logging.Logger
	client  *api.Client
	state   *state.App
	history *history.Store
	tracker *tracker.Tracker
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	log, err := logging.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	client := api.New(cfg.BaseURL, cfg.CSRFToken, cfg.HTTPTimeout)
	appState := state.New(cfg.Persona)
	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:     cfg,
		log:     log,
		client:  client,
		state:   appState,
		history: store,
	}
	a.tracker = tracker.New(client, &consoleSink{out: cmd.OutOrStdout(), state: appState}, tracker.Options{
		Interval:    cfg.PollInterval,
		MaxAttempts: cfg.PollMaxAttempts,
		Refresher:   &listRefresher{app: a, out: cmd.OutOrStdout()},
		Logger:      log,
	})
	return a, nil
}

func (a *app) Close() {
	a.tracker.CancelAll()
	if a.history != nil {
		_ = a.history.Close()
	}
	a.log.Sync()
}

// loadMaterials fetches the server list and refreshes the local caches.
func (a *app) loadMaterials(ctx context.Context) error {
	materials, err := a.client.Materials(ctx)
	if err != nil {
		return err
	}
	a.state.ReplaceMaterials(materials)
	if err := a.history.CacheMaterials(materials); err != nil {
		a.log.Warn("cache materials", "error", err.Error())
	}
	return nil
}
