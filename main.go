// Package main provides the tracka CLI entry point.
// tracka is the command-line interface for following IETF meeting agendas.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/tracka-cli/cmd"
	"github.com/otherjamesbrown/tracka-cli/config"
	"github.com/otherjamesbrown/tracka-cli/pkg/buildinfo"
	"github.com/otherjamesbrown/tracka-cli/pkg/logging"
)

// Global flags and state.
var (
	baseURL      string
	meeting      string
	timeout      time.Duration
	outputFormat string
	debug        bool

	// cfg holds the loaded configuration.
	cfg *config.CLIConfig

	// debugSink receives log entries when file-backed debug logging is
	// enabled; drained on exit.
	debugSink *logging.FileSink
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tracka",
	Short: "tracka - IETF meeting agenda tracker",
	Long: `tracka follows IETF meeting agendas from the command line.

It fetches the agenda for a meeting, applies keyword filters, adjusts
session times to a display timezone, and groups the result by day. Filter
state round-trips through shareable agenda URLs, and picked sessions and
display preferences persist between runs.

COMMON WORKFLOWS:
  View an agenda:    tracka agenda show 120 --show httpbis,dnsop
  Follow it live:    tracka agenda watch 120 --tz local
  Share a view:      tracka agenda share 120 --show art
  Track sessions:    tracka picks add 34512  →  tracka agenda show --picked

DISCOVERY:
  tracka <command> --help     Subcommands, flags, and examples`,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		// Skip initialization for commands that don't need it.
		if c.Name() == "version" || c.Name() == "help" || c.Name() == "completion" {
			return nil
		}

		// Load configuration.
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		// Override with command-line flags.
		if baseURL != "" {
			cfg.BaseURL = baseURL
		}
		if meeting != "" {
			cfg.Meeting = meeting
		}
		if timeout != 0 {
			cfg.Timeout = timeout
		}
		if outputFormat != "" {
			cfg.OutputFormat = config.OutputFormat(outputFormat)
		}
		if debug {
			cfg.Debug = true
		}

		// Subcommands load configuration through their deps; hand them
		// the flag-overridden one.
		cmd.SetResolvedConfig(cfg)

		return initLogging(cfg)
	},
	PersistentPostRunE: func(c *cobra.Command, args []string) error {
		if debugSink != nil {
			return debugSink.Close()
		}
		return nil
	},
}

// initLogging configures the global logger from the loaded configuration.
func initLogging(cfg *config.CLIConfig) error {
	logCfg := logging.DefaultConfig()
	if cfg.Debug {
		logCfg.Level = logging.LevelDebug
	}

	if path, err := cfg.ResolveDebugLogPath(); err == nil && path != "" {
		debugSink = logging.NewFileSink(logging.FileSinkConfig{
			Writer: &logging.JSONLinesWriter{Path: path},
		})
		logCfg.Sinks = []logging.Sink{debugSink}
	}

	logging.SetGlobal(logging.NewLogger(logCfg))
	return nil
}

// versionCmd prints build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(buildinfo.String())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "agenda server base URL (default https://datatracker.ietf.org)")
	rootCmd.PersistentFlags().StringVar(&meeting, "meeting-number", "", "default meeting number (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "request timeout (e.g., 30s, 1m)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output-default", "", "default output format: text, json, yaml")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(cmd.NewAgendaCommand(nil))
	rootCmd.AddCommand(cmd.NewPicksCommand(nil))
	rootCmd.AddCommand(cmd.NewPrefsCommand(nil))
	rootCmd.AddCommand(versionCmd)
}

func main() {
	// Set up signal handling for graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
