package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mikeboe/research-assistant/pkg/config"
	"github.com/mikeboe/research-assistant/pkg/grounding"
	"github.com/mikeboe/research-assistant/pkg/render"
	"github.com/mikeboe/research-assistant/pkg/research"
	"github.com/mikeboe/research-assistant/pkg/tui"
)

var (
	logFile    string
	useExample bool
)

// errTaskFailed is returned after the failure has already been printed.
var errTaskFailed = errors.New("research task failed")

func main() {
	// Load .env file
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "research-assistant",
		Short: "A terminal research assistant grounded in Google Search",
		Long: `research-assistant answers a research task with Gemini and Google Search
grounding, and lists the web pages the answer was built from.

Run without a subcommand to open the interactive interface.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive interface",
		Args:  cobra.NoArgs,
		RunE:  runTUI,
	}

	askCmd := &cobra.Command{
		Use:   "ask [task...]",
		Short: "Run a single research task and print the answer with its sources",
		RunE:  runAsk,
	}
	askCmd.Flags().BoolVarP(&useExample, "example", "e", false, "Run the built-in example task")

	rootCmd.AddCommand(tuiCmd, askCmd)

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errTaskFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// setup loads configuration, installs the logger and builds the searcher.
// Logs go to stderr unless quiet is set, in which case they are dropped
// unless --log-file is given.
func setup(ctx context.Context, quiet bool) (*grounding.GeminiSearcher, func(), error) {
	var out io.Writer = os.Stderr
	if quiet {
		out = io.Discard
	}
	closer := func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closer = func() { f.Close() }
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelWarn})))

	cfg, err := config.Load()
	if err != nil {
		closer()
		return nil, nil, err
	}

	searcher, err := grounding.NewGeminiSearcher(ctx, cfg.ApiKey, cfg.Model, cfg.RequestTimeout)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return searcher, closer, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	searcher, closer, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer closer()

	orch := research.NewOrchestrator(searcher)
	p := tea.NewProgram(tui.NewModel(ctx, orch, searcher.Model()), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interface exited: %w", err)
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	query := strings.Join(args, " ")
	if useExample {
		query = research.ExampleTask
	}
	if strings.TrimSpace(query) == "" {
		return errors.New("a research task is required: pass it as arguments or use --example")
	}

	searcher, closer, err := setup(ctx, false)
	if err != nil {
		return err
	}
	defer closer()

	orch := research.NewOrchestrator(searcher)
	done := orch.Submit(ctx, query)
	if done == nil {
		return errors.New("research task was not started")
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Researching...")
	select {
	case <-done:
	case <-ctx.Done():
		orch.Clear()
		return fmt.Errorf("research task interrupted: %w", ctx.Err())
	}

	snap := orch.Snapshot()
	if msg := snap.ErrorMessage(); msg != "" {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintf(errOut, "Error: %s\n", msg)
		if snap.ConfigError {
			fmt.Fprintln(errOut, "\nTroubleshooting Guide:")
			for i, step := range render.TroubleshootingSteps {
				fmt.Fprintf(errOut, "  %d. %s\n", i+1, step)
			}
		}
		return errTaskFailed
	}

	fmt.Fprintln(cmd.OutOrStdout(), render.PlainText(snap.State.Result))
	return nil
}
