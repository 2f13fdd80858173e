// Package cmd defines and implements the CLI commands for the allegro executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pkonowrocki/allegro-cli/internal/allegro"
	"github.com/pkonowrocki/allegro-cli/internal/config"
	"github.com/pkonowrocki/allegro-cli/internal/fetch"
	"github.com/pkonowrocki/allegro-cli/internal/logging"
	"github.com/pkonowrocki/allegro-cli/internal/output"
	"github.com/pkonowrocki/allegro-cli/internal/progress"
)

var (
	cfgFile string
	format  string
	verbose bool
)

// appKeyType is the key for storing the app state in the context.
type appKeyType string

const appKey appKeyType = "app"

// appState carries everything a subcommand needs: the loaded config,
// the logger, and the wired marketplace client.
type appState struct {
	cfg     config.Config
	cfgPath string
	format  string
	logger  *zap.Logger
	client  *allegro.Client
}

// newClient is the client factory. It is a variable so tests can swap
// in a client backed by httptest servers.
var newClient = func(cfg config.Config, logger *zap.Logger) *allegro.Client {
	return allegro.NewClient(cfg, logger, progress.NewLogEmitter(logger.Named("progress")))
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allegro",
		Short: "Search, browse, and manage a cart on the Allegro marketplace.",
		Long: `allegro is a cookie-authenticated marketplace CLI. It scrapes listing
and offer pages with a tiered fetch pipeline (direct requests first, an
external challenge solver on demand) and talks to the edge REST API for
cart and package operations. Output is machine-readable by default.`,

		SilenceUsage:  true,
		SilenceErrors: true,

		// Runs before every subcommand's RunE: load the config, build the
		// logger, and inject the wired app state into the context.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path := cfgFile
			if path == "" {
				var err error
				path, err = config.DefaultPath()
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
			}

			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger, err := logging.New(verbose)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			if !verbose {
				logger = logger.WithOptions(zap.IncreaseLevel(zap.WarnLevel))
			}

			fmtChoice := cfg.OutputFormat
			if format != "" {
				fmtChoice = format
			}
			switch fmtChoice {
			case "text", "json", "tsv":
			default:
				return fmt.Errorf("unsupported output format %q", fmtChoice)
			}

			state := &appState{
				cfg:     cfg,
				cfgPath: path,
				format:  fmtChoice,
				logger:  logger,
				client:  newClient(cfg, logger),
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, state))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if state, ok := cmd.Context().Value(appKey).(*appState); ok && state != nil {
				_ = state.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.allegro-cli/config.yaml)")
	cmd.PersistentFlags().StringVar(&format, "format", "", "output format: text, json, or tsv (default from config)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging on stderr")

	cmd.AddCommand(
		newSearchCmd(),
		newOfferCmd(),
		newCartCmd(),
		newPackagesCmd(),
		newLoginCmd(),
		newConfigCmd(),
	)
	return cmd
}

// Execute runs the root command and returns the process exit code.
// Failures are rendered as a JSON error envelope on stderr so agents
// driving the CLI can parse them; authentication failures exit with 2.
func Execute() int {
	err := newRootCmd().Execute()
	if err == nil {
		return 0
	}

	entry := output.ErrorEntry{
		Message:     err.Error(),
		Code:        errorCode(err),
		UserMessage: err.Error(),
	}
	if hint := fetch.Hint(err); hint != "" {
		entry.Details = hint
	}
	_ = output.Errors(os.Stderr, []output.ErrorEntry{entry})

	if entry.Code == "Unauthorized" {
		return 2
	}
	return 1
}

func errorCode(err error) string {
	var apiErr *allegro.APIError
	var fetchErr *fetch.FetchFailedError
	var solverDown *fetch.SolverUnavailableError
	var solverErr *fetch.SolverError
	switch {
	case errors.Is(err, fetch.ErrSessionExpired), errors.Is(err, allegro.ErrNotLoggedIn):
		return "Unauthorized"
	case errors.As(err, &solverDown):
		return "SolverUnavailable"
	case errors.As(err, &solverErr):
		return "SolverError"
	case errors.As(err, &fetchErr):
		return "FetchFailed"
	case errors.As(err, &apiErr):
		return "ApiError"
	default:
		return "CommandError"
	}
}

func resolveState(ctx context.Context) (*appState, error) {
	state, ok := ctx.Value(appKey).(*appState)
	if !ok || state == nil {
		return nil, errors.New("application state not initialized")
	}
	return state, nil
}

func splitColumns(raw string) []string {
	if raw == "" {
		raw = output.DefaultColumns
	}
	var cols []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}

// render writes v in the selected format. JSON gets the document as-is;
// text and tsv get the flattened row view sliced to the columns.
func render(w io.Writer, format string, v any, columns []string) error {
	if format == "json" {
		return output.JSON(w, v)
	}
	rows, err := output.Rows(v)
	if err != nil {
		return fmt.Errorf("flatten output: %w", err)
	}
	if format == "tsv" {
		output.TSV(w, rows, columns)
		return nil
	}
	output.Text(w, rows, columns)
	return nil
}

// renderOne is render for a single record.
func renderOne(w io.Writer, format string, v any, columns []string) error {
	if format == "json" {
		return output.JSON(w, v)
	}
	row, err := output.Row(v)
	if err != nil {
		return fmt.Errorf("flatten output: %w", err)
	}
	if format == "tsv" {
		output.TSV(w, []map[string]any{row}, columns)
		return nil
	}
	output.Text(w, []map[string]any{row}, columns)
	return nil
}
