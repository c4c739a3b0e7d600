package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/RichardoC/askbot/internal/app"
	"github.com/RichardoC/askbot/internal/config"
)

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#7C3AED")).
	Padding(0, 1)

func main() {
	if err := newAskCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newAskCmd() *cobra.Command {
	var (
		configPath string
		raw        bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Ask about the weather, a stock price or the next F1 race",
		Example: `  ask "What's the weather in Tokyo?"
  ask "TCS stock price"
  ask "When is the next F1 race?"`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if !verbose {
				cfg.Log.Level = "warn"
			}
			logger, err := app.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			message := strings.Join(args, " ")
			reply := app.NewAssistant(cfg, nil, logger).Reply(cmd.Context(), message)

			out := cmd.OutOrStdout()
			if raw {
				fmt.Fprintln(out, reply.Content)
				return nil
			}

			renderer, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(80),
			)
			if err != nil {
				return fmt.Errorf("create renderer: %w", err)
			}
			rendered, err := renderer.Render(reply.Content)
			if err != nil {
				return fmt.Errorf("render reply: %w", err)
			}
			fmt.Fprintln(out, headerStyle.Render("askbot · "+string(reply.Intent)))
			fmt.Fprint(out, rendered)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "config.yaml", "Configuration file path")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the markdown reply without rendering")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log at the configured level instead of warn")
	return cmd
}
