package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/otherjamesbrown/tracka-cli/config"
	"github.com/otherjamesbrown/tracka-cli/pkg/logging"
	"github.com/otherjamesbrown/tracka-cli/pkg/prefs"
)

// Picks command flags.
var (
	picksMeeting      string
	picksOutputFormat string
)

// PicksCommandDeps holds dependencies for picks commands.
type PicksCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
	NewStore   func(cfg *config.CLIConfig, log logging.Logger) *prefs.Store
	Log        logging.Logger
}

// DefaultPicksDeps returns default dependencies for production use.
func DefaultPicksDeps() *PicksCommandDeps {
	return &PicksCommandDeps{
		LoadConfig: loadResolvedConfig,
		NewStore:   newPrefsStore,
	}
}

// NewPicksCommand creates the root picks command with all subcommands.
func NewPicksCommand(deps *PicksCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultPicksDeps()
	}

	cmd := &cobra.Command{
		Use:   "picks",
		Short: "Manage your picked sessions",
		Long: `Manage the personal session subset for a meeting.

Picked sessions persist per meeting. 'tracka agenda show --picked'
restricts the agenda to this subset.

Examples:
  # Pick two sessions by id
  tracka picks add 34512 34513

  # Remove one
  tracka picks remove 34512

  # List picks for a specific meeting
  tracka picks list --meeting 120`,
	}

	cmd.PersistentFlags().StringVarP(&picksMeeting, "meeting", "m", "", "Meeting number (overrides config)")

	// Add subcommands
	cmd.AddCommand(newPicksAddCommand(deps))
	cmd.AddCommand(newPicksRemoveCommand(deps))
	cmd.AddCommand(newPicksListCommand(deps))

	return cmd
}

// picksContext loads configuration, resolves the meeting and opens the
// preference store.
func picksContext(deps *PicksCommandDeps) (*prefs.Store, string, error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, "", fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	meeting := picksMeeting
	if meeting == "" {
		meeting = cfg.Meeting
	}
	if meeting == "" {
		return nil, "", fmt.Errorf("no meeting number given and none configured; pass --meeting or set 'meeting' in the config file")
	}

	return deps.NewStore(cfg, commandLogger(deps.Log)), meeting, nil
}

// parseSessionIDs converts command arguments to session ids.
func parseSessionIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid session id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// newPicksAddCommand creates the 'picks add' subcommand.
func newPicksAddCommand(deps *PicksCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "add <session-id>...",
		Short: "Add sessions to your picks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, meeting, err := picksContext(deps)
			if err != nil {
				return err
			}
			ids, err := parseSessionIDs(args)
			if err != nil {
				return err
			}

			p := store.Load(meeting)
			for _, id := range ids {
				p.Pick(id)
			}
			store.Persist(meeting, p)

			fmt.Printf("Picked %d session(s), %d total for meeting %s.\n", len(ids), len(p.Picked), meeting)
			return nil
		},
	}
}

// newPicksRemoveCommand creates the 'picks remove' subcommand.
func newPicksRemoveCommand(deps *PicksCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <session-id>...",
		Short:   "Remove sessions from your picks",
		Aliases: []string{"rm"},
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, meeting, err := picksContext(deps)
			if err != nil {
				return err
			}
			ids, err := parseSessionIDs(args)
			if err != nil {
				return err
			}

			p := store.Load(meeting)
			for _, id := range ids {
				p.Unpick(id)
			}
			store.Persist(meeting, p)

			fmt.Printf("Removed %d session(s), %d remaining for meeting %s.\n", len(ids), len(p.Picked), meeting)
			return nil
		},
	}
}

// newPicksListCommand creates the 'picks list' subcommand.
func newPicksListCommand(deps *PicksCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List your picked sessions",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, meeting, err := picksContext(deps)
			if err != nil {
				return err
			}

			p := store.Load(meeting)
			return outputPicks(config.OutputFormat(picksOutputFormat), meeting, p.Picked)
		},
	}

	cmd.Flags().StringVarP(&picksOutputFormat, "output", "o", "", "Output format: text, json, yaml")

	return cmd
}

// outputPicks formats and outputs the picked session ids.
func outputPicks(format config.OutputFormat, meeting string, picked []int64) error {
	switch format {
	case config.OutputFormatJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"meeting": meeting,
			"picked":  picked,
			"count":   len(picked),
		})
	case config.OutputFormatYAML:
		enc := yaml.NewEncoder(os.Stdout)
		return enc.Encode(map[string]interface{}{
			"meeting": meeting,
			"picked":  picked,
			"count":   len(picked),
		})
	default:
		if len(picked) == 0 {
			fmt.Printf("No picked sessions for meeting %s.\n", meeting)
			return nil
		}
		fmt.Printf("Picked sessions for meeting %s (%d):\n", meeting, len(picked))
		for _, id := range picked {
			fmt.Printf("  %d\n", id)
		}
		return nil
	}
}
