package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkonowrocki/allegro-cli/internal/config"
	"github.com/pkonowrocki/allegro-cli/internal/output"
)

const maskThreshold = 40

// maskSecret shortens long secrets so config output is safe to paste
// into logs and bug reports.
func maskSecret(value string) string {
	if len(value) <= maskThreshold {
		return value
	}
	return value[:20] + "..." + value[len(value)-10:]
}

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or update the CLI configuration",
	}
	cmd.AddCommand(newConfigShowCmd(), newConfigSetCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current configuration (cookies masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := resolveState(cmd.Context())
			if err != nil {
				return err
			}

			cfg := state.cfg
			doc := map[string]any{
				"cookies":       maskSecret(cfg.Cookies),
				"edge_base_url": cfg.EdgeBaseURL,
				"solver_url":    cfg.SolverURL,
				"output_format": cfg.OutputFormat,
				"user_agent":    cfg.UserAgent,
				"http": map[string]any{
					"timeout_seconds":        cfg.HTTP.TimeoutSeconds,
					"solver_timeout_seconds": cfg.HTTP.SolverTimeoutSeconds,
					"lazy_timeout_seconds":   cfg.HTTP.LazyTimeoutSeconds,
					"host_qps":               cfg.HTTP.HostQPS,
				},
			}

			w := cmd.OutOrStdout()
			if state.format == "json" {
				return output.JSON(w, doc)
			}
			fmt.Fprintf(w, "cookies: %s\n", maskSecret(cfg.Cookies))
			fmt.Fprintf(w, "edge_base_url: %s\n", cfg.EdgeBaseURL)
			fmt.Fprintf(w, "solver_url: %s\n", cfg.SolverURL)
			fmt.Fprintf(w, "output_format: %s\n", cfg.OutputFormat)
			fmt.Fprintf(w, "user_agent: %s\n", cfg.UserAgent)
			fmt.Fprintf(w, "http.timeout_seconds: %d\n", cfg.HTTP.TimeoutSeconds)
			fmt.Fprintf(w, "http.solver_timeout_seconds: %d\n", cfg.HTTP.SolverTimeoutSeconds)
			fmt.Fprintf(w, "http.lazy_timeout_seconds: %d\n", cfg.HTTP.LazyTimeoutSeconds)
			fmt.Fprintf(w, "http.host_qps: %g\n", cfg.HTTP.HostQPS)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	var (
		cookies      string
		edgeBaseURL  string
		outputFormat string
		solverURL    string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update configuration values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := resolveState(cmd.Context())
			if err != nil {
				return err
			}

			cfg := state.cfg
			if cmd.Flags().Changed("cookies") {
				cfg.Cookies = cookies
			}
			if cmd.Flags().Changed("edge-base-url") {
				cfg.EdgeBaseURL = edgeBaseURL
			}
			if cmd.Flags().Changed("output-format") {
				cfg.OutputFormat = outputFormat
			}
			if cmd.Flags().Changed("solver-url") {
				cfg.SolverURL = solverURL
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if err := config.Save(cfg, state.cfgPath); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			return output.JSON(cmd.OutOrStdout(), map[string]string{
				"status":  "ok",
				"message": "Configuration updated",
			})
		},
	}

	cmd.Flags().StringVar(&cookies, "cookies", "", "session cookie header string")
	cmd.Flags().StringVar(&edgeBaseURL, "edge-base-url", "", "edge REST API base URL")
	cmd.Flags().StringVar(&outputFormat, "output-format", "", "default output format: text, json, or tsv")
	cmd.Flags().StringVar(&solverURL, "solver-url", "", "challenge solver endpoint URL")
	return cmd
}
