package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkonowrocki/allegro-cli/internal/config"
	"github.com/pkonowrocki/allegro-cli/internal/cookie"
)

// newLoginCmd creates the 'login' subcommand. It reads cookies pasted on
// stdin, either as the DevTools cookie table or as a raw Cookie header,
// and saves them to the config file.
func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Save session cookies pasted from the browser",
		Long: `Reads cookies from stdin and stores them in the config file.
Copy them from Chrome DevTools (Application > Cookies > allegro.pl):
either paste the whole table or a raw "name=value; name2=value2" string.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := resolveState(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Paste cookies from Chrome DevTools (Application > Cookies > allegro.pl).")
			fmt.Fprintln(out, "You can paste the DevTools table OR a raw cookie header string.")
			fmt.Fprintln(out, "Press Ctrl+D when done:")
			fmt.Fprintln(out)

			raw, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			text := strings.TrimSpace(string(raw))
			if text == "" {
				return errors.New("no input provided")
			}

			cookieStr := cookie.FromPaste(text)
			if cookieStr == "" || !strings.Contains(cookieStr, "=") {
				return errors.New("no cookies parsed; check the format")
			}

			cfg := state.cfg
			cfg.Cookies = cookieStr
			if err := config.Save(cfg, state.cfgPath); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			fmt.Fprintf(out, "\nSaved %d cookies to config.\n", strings.Count(cookieStr, "="))
			fmt.Fprintln(out, "Try: allegro cart list")
			return nil
		},
	}
}
