package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/tracka-cli/client"
	"github.com/otherjamesbrown/tracka-cli/config"
	"github.com/otherjamesbrown/tracka-cli/pkg/agenda"
	"github.com/otherjamesbrown/tracka-cli/pkg/logging"
	"github.com/otherjamesbrown/tracka-cli/pkg/prefs"
)

// Agenda command flags
var (
	agendaOutputFormat string
	agendaShowList     string
	agendaHideList     string
	agendaShowTypes    string
	agendaHideTypes    string
	agendaFromURL      string
	agendaTimezone     string
	agendaSearch       string
	agendaPickedOnly   bool
)

// Fetcher retrieves agenda data. Satisfied by *client.AgendaClient.
type Fetcher interface {
	Fetch(ctx context.Context, meeting string) (*agenda.Data, error)
	WithRetry(ctx context.Context, fn func() error) error
	FallbackURL(meeting string) string
}

// AgendaCommandDeps holds dependencies for agenda commands.
type AgendaCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
	NewFetcher func(cfg *config.CLIConfig, log logging.Logger) Fetcher
	NewStore   func(cfg *config.CLIConfig, log logging.Logger) *prefs.Store
	Log        logging.Logger
}

// DefaultAgendaDeps returns default dependencies for production use.
func DefaultAgendaDeps() *AgendaCommandDeps {
	return &AgendaCommandDeps{
		LoadConfig: loadResolvedConfig,
		NewFetcher: func(cfg *config.CLIConfig, log logging.Logger) Fetcher {
			return client.NewAgendaClient(cfg, nil, log)
		},
		NewStore: newPrefsStore,
	}
}

// NewAgendaCommand creates the root agenda command with all subcommands.
func NewAgendaCommand(deps *AgendaCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultAgendaDeps()
	}

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "View and filter the meeting agenda",
		Long: `View the meeting agenda with keyword filtering and timezone adjustment.

Sessions are grouped by day in the selected display timezone. Filters
accept working-group keywords (comma-separated) or a previously shared
agenda URL.

Examples:
  # Show the full agenda for the configured meeting
  tracka agenda show

  # Show only two working groups, in your local timezone
  tracka agenda show 120 --show httpbis,dnsop --tz local

  # Restore the filter state from a shared link
  tracka agenda show --url "https://datatracker.ietf.org/meeting/120/agenda?show=httpbis"

  # Output as JSON
  tracka agenda show -o json`,
	}

	// Add subcommands
	cmd.AddCommand(newAgendaShowCommand(deps))
	cmd.AddCommand(newAgendaWatchCommand(deps))
	cmd.AddCommand(newAgendaShareCommand(deps))

	return cmd
}

// newAgendaShowCommand creates the 'agenda show' subcommand.
func newAgendaShowCommand(deps *AgendaCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [meeting]",
		Short: "Show the filtered agenda",
		Long: `Show the agenda for a meeting, filtered and grouped by day.

The meeting number defaults to the configured one. The current session
is marked when the meeting is in progress.

Examples:
  # Full agenda
  tracka agenda show 120

  # Filter by keyword, hide a session type
  tracka agenda show 120 --show art --hidetypes plenary

  # Search instead of filtering
  tracka agenda show 120 --search "transport"

  # Only picked sessions
  tracka agenda show 120 --picked`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgendaShow(cmd.Context(), cmd.OutOrStdout(), deps, args)
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().StringVar(&agendaTimezone, "tz", "", "Display timezone: IANA name, 'meeting', or 'local'")
	cmd.Flags().StringVar(&agendaSearch, "search", "", "Free-text search over session names, groups and rooms")
	cmd.Flags().BoolVar(&agendaPickedOnly, "picked", false, "Show only picked sessions")
	cmd.Flags().StringVarP(&agendaOutputFormat, "output", "o", "", "Output format: text, json, yaml")

	return cmd
}

// newAgendaShareCommand creates the 'agenda share' subcommand.
func newAgendaShareCommand(deps *AgendaCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share [meeting]",
		Short: "Build a shareable filtered agenda URL",
		Long: `Build an agenda URL carrying the given filter state, suitable for
sharing. Opening the URL restores the same filtered view.

Examples:
  # Share two working groups
  tracka agenda share 120 --show httpbis,dnsop

  # Share everything except plenaries
  tracka agenda share 120 --hidetypes plenary`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgendaShare(cmd.OutOrStdout(), deps, args)
		},
	}

	addFilterFlags(cmd)

	return cmd
}

// addFilterFlags registers the filter-state flags shared by agenda
// subcommands.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&agendaShowList, "show", "", "Comma-separated keywords to show")
	cmd.Flags().StringVar(&agendaHideList, "hide", "", "Comma-separated keywords to hide")
	cmd.Flags().StringVar(&agendaShowTypes, "showtypes", "", "Comma-separated session types to show")
	cmd.Flags().StringVar(&agendaHideTypes, "hidetypes", "", "Comma-separated session types to hide")
	cmd.Flags().StringVar(&agendaFromURL, "url", "", "Restore filter state from a shared agenda URL")
}

// filterFromFlags builds FilterParams from the flag set. A --url value
// takes precedence and restores the exact shared state, including an
// empty-but-enabled filter.
func filterFromFlags() agenda.FilterParams {
	if agendaFromURL != "" {
		query := ""
		if i := strings.Index(agendaFromURL, "?"); i >= 0 {
			query = agendaFromURL[i+1:]
		}
		return agenda.ParseQuery(query)
	}

	var parts []string
	appendList := func(key, value string) {
		if value != "" {
			parts = append(parts, key+"="+value)
		}
	}
	appendList("show", agendaShowList)
	appendList("hide", agendaHideList)
	appendList("showtypes", agendaShowTypes)
	appendList("hidetypes", agendaHideTypes)

	return agenda.ParseQuery(strings.Join(parts, "&"))
}

// resolveMeeting picks the meeting number from args or configuration.
func resolveMeeting(cfg *config.CLIConfig, args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if cfg.Meeting != "" {
		return cfg.Meeting, nil
	}
	return "", fmt.Errorf("no meeting number given and none configured; pass one or set 'meeting' in the config file")
}

// runAgendaShow executes the agenda show command.
func runAgendaShow(ctx context.Context, out io.Writer, deps *AgendaCommandDeps, args []string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	meeting, err := resolveMeeting(cfg, args)
	if err != nil {
		return err
	}

	// Determine output format
	outputFormat := cfg.OutputFormat
	if agendaOutputFormat != "" {
		outputFormat = config.OutputFormat(agendaOutputFormat)
		if !outputFormat.IsValid() {
			return fmt.Errorf("invalid output format: %s", agendaOutputFormat)
		}
	}

	filter := filterFromFlags()

	log := commandLogger(deps.Log)
	store := deps.NewStore(cfg, log)
	p := store.Load(meeting)

	timezone := agendaTimezone
	if timezone == "" {
		timezone = cfg.Timezone
	}
	if timezone == "" {
		timezone = p.Timezone
	}

	fetcher := deps.NewFetcher(cfg, log)
	data, err := fetcher.Fetch(ctx, meeting)
	if err != nil {
		// One-shot load: no retry, just point at the plain-text agenda.
		return fmt.Errorf("%w\nThe text agenda may still be reachable: %s", err, fetcher.FallbackURL(meeting))
	}

	opts := agenda.AssembleOptions{
		Filter:        filter,
		Timezone:      timezone,
		Search:        agendaSearch,
		PickerMode:    agendaPickedOnly,
		PickerVisible: agendaPickedOnly,
		Picked:        p.PickedSet(),
		Width:         terminalWidth(),
	}

	vm, err := agenda.Assemble(ctx, data, opts)
	if err != nil {
		// Timezone fallback: the view model is still rendered.
		log.Warn("timezone fallback", logging.Err(err))
	}

	// The info note is advisory; outputAgenda shows it only in text mode
	// so json/yaml output stays machine-readable.
	infoNote := ""
	if data.Meeting.InfoNote != "" && !p.NoteDismissed(data.Meeting.InfoNote) {
		infoNote = data.Meeting.InfoNote
	}

	return outputAgenda(out, outputFormat, data, vm, infoNote)
}

// runAgendaShare executes the agenda share command.
func runAgendaShare(out io.Writer, deps *AgendaCommandDeps, args []string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	meeting, err := resolveMeeting(cfg, args)
	if err != nil {
		return err
	}

	filter := filterFromFlags()

	nav := agenda.NewHistoryNavigator(cfg.AgendaPageURL(meeting))
	target := agenda.SyncToURL(nav, cfg.AgendaPageURL(meeting), filter)

	fmt.Fprintln(out, target)
	return nil
}
