package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/tracka-cli/config"
	"github.com/otherjamesbrown/tracka-cli/pkg/logging"
	"github.com/otherjamesbrown/tracka-cli/pkg/prefs"
)

// Prefs command flags.
var (
	prefsMeeting string
)

// PrefsCommandDeps holds dependencies for prefs commands.
type PrefsCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
	NewStore   func(cfg *config.CLIConfig, log logging.Logger) *prefs.Store
	Log        logging.Logger
}

// DefaultPrefsDeps returns default dependencies for production use.
func DefaultPrefsDeps() *PrefsCommandDeps {
	return &PrefsCommandDeps{
		LoadConfig: loadResolvedConfig,
		NewStore:   newPrefsStore,
	}
}

// settableToggle maps a prefs set/get name to its field accessors.
type settableToggle struct {
	get func(*prefs.Preferences) bool
	set func(*prefs.Preferences, bool)
}

var prefToggles = map[string]settableToggle{
	"area-indicators": {
		get: func(p *prefs.Preferences) bool { return p.AreaIndicators },
		set: func(p *prefs.Preferences, v bool) { p.AreaIndicators = v },
	},
	"bold-text": {
		get: func(p *prefs.Preferences) bool { return p.BoldText },
		set: func(p *prefs.Preferences, v bool) { p.BoldText = v },
	},
	"color-legend": {
		get: func(p *prefs.Preferences) bool { return p.ColorLegend },
		set: func(p *prefs.Preferences, v bool) { p.ColorLegend = v },
	},
	"realtime-red-line": {
		get: func(p *prefs.Preferences) bool { return p.RealtimeRedLine },
		set: func(p *prefs.Preferences, v bool) { p.RealtimeRedLine = v },
	},
	"calendar-hide-filtered": {
		get: func(p *prefs.Preferences) bool { return p.CalendarHideFiltered },
		set: func(p *prefs.Preferences, v bool) { p.CalendarHideFiltered = v },
	},
	"calendar-show-picked": {
		get: func(p *prefs.Preferences) bool { return p.CalendarShowPicked },
		set: func(p *prefs.Preferences, v bool) { p.CalendarShowPicked = v },
	},
}

// NewPrefsCommand creates the root prefs command with all subcommands.
func NewPrefsCommand(deps *PrefsCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultPrefsDeps()
	}

	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Manage display preferences",
		Long: `Manage persisted display preferences.

Toggles and the color palette apply across meetings; event colors and
the dismissed info note are per meeting.

Settable values: toggles (` + strings.Join(toggleNames(), ", ") + `),
timezone, calendar-view (week or day).

Examples:
  # Show all preferences
  tracka prefs get

  # Read one value
  tracka prefs get bold-text

  # Turn a toggle on
  tracka prefs set bold-text true

  # Save a display timezone
  tracka prefs set timezone Europe/Berlin

  # Assign a palette color to a session
  tracka prefs colors --event 34512 --hex "#dc3545"

  # Dismiss the current info note
  tracka prefs dismiss-note "Welcome to IETF 120"`,
	}

	cmd.PersistentFlags().StringVarP(&prefsMeeting, "meeting", "m", "", "Meeting number (overrides config)")

	// Add subcommands
	cmd.AddCommand(newPrefsGetCommand(deps))
	cmd.AddCommand(newPrefsSetCommand(deps))
	cmd.AddCommand(newPrefsColorsCommand(deps))
	cmd.AddCommand(newPrefsDismissNoteCommand(deps))

	return cmd
}

func toggleNames() []string {
	names := make([]string, 0, len(prefToggles))
	for name := range prefToggles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// prefsContext loads configuration, resolves the meeting and opens the
// preference store.
func prefsContext(deps *PrefsCommandDeps) (*prefs.Store, string, error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, "", fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	meeting := prefsMeeting
	if meeting == "" {
		meeting = cfg.Meeting
	}
	if meeting == "" {
		return nil, "", fmt.Errorf("no meeting number given and none configured; pass --meeting or set 'meeting' in the config file")
	}

	return deps.NewStore(cfg, commandLogger(deps.Log)), meeting, nil
}

// newPrefsGetCommand creates the 'prefs get' subcommand.
func newPrefsGetCommand(deps *PrefsCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "get [name]",
		Short: "Show preferences",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, meeting, err := prefsContext(deps)
			if err != nil {
				return err
			}
			p := store.Load(meeting)

			if len(args) == 0 {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			}

			name := args[0]
			switch name {
			case "timezone":
				fmt.Println(p.Timezone)
			case "calendar-view":
				fmt.Println(p.DefaultCalendarView)
			default:
				toggle, ok := prefToggles[name]
				if !ok {
					return fmt.Errorf("unknown preference: %s", name)
				}
				fmt.Println(toggle.get(p))
			}
			return nil
		},
	}
}

// newPrefsSetCommand creates the 'prefs set' subcommand.
func newPrefsSetCommand(deps *PrefsCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <value>",
		Short: "Set a preference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, meeting, err := prefsContext(deps)
			if err != nil {
				return err
			}
			p := store.Load(meeting)

			name, value := args[0], args[1]
			switch name {
			case "timezone":
				p.Timezone = value
			case "calendar-view":
				if value != prefs.CalendarViewWeek && value != prefs.CalendarViewDay {
					return fmt.Errorf("calendar-view must be %q or %q", prefs.CalendarViewWeek, prefs.CalendarViewDay)
				}
				p.DefaultCalendarView = value
			default:
				toggle, ok := prefToggles[name]
				if !ok {
					return fmt.Errorf("unknown preference: %s", name)
				}
				enabled, err := strconv.ParseBool(value)
				if err != nil {
					return fmt.Errorf("invalid boolean value %q for %s", value, name)
				}
				toggle.set(p, enabled)
			}

			store.Persist(meeting, p)
			fmt.Printf("%s = %s\n", name, value)
			return nil
		},
	}
}

// Colors subcommand flags.
var (
	prefsColorEvent int64
	prefsColorHex   string
	prefsColorTag   string
)

// newPrefsColorsCommand creates the 'prefs colors' subcommand.
func newPrefsColorsCommand(deps *PrefsCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "colors",
		Short: "Show the palette or color a session",
		Long: `Show the color palette, tag a palette entry, or assign a palette
color to a session.

Examples:
  # Show the palette and per-session assignments
  tracka prefs colors

  # Name a palette color
  tracka prefs colors --hex "#dc3545" --tag "must attend"

  # Color one session
  tracka prefs colors --event 34512 --hex "#dc3545"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, meeting, err := prefsContext(deps)
			if err != nil {
				return err
			}
			p := store.Load(meeting)

			switch {
			case prefsColorEvent != 0:
				if prefsColorHex == "" {
					delete(p.EventColors, prefsColorEvent)
					fmt.Printf("Cleared color for session %d.\n", prefsColorEvent)
				} else {
					p.EventColors[prefsColorEvent] = prefsColorHex
					fmt.Printf("Session %d colored %s.\n", prefsColorEvent, prefsColorHex)
				}
			case prefsColorHex != "" && prefsColorTag != "":
				if !tagPaletteColor(p, prefsColorHex, prefsColorTag) {
					return fmt.Errorf("no palette color %s", prefsColorHex)
				}
				fmt.Printf("%s tagged %q.\n", prefsColorHex, prefsColorTag)
			default:
				outputPalette(p)
				return nil
			}

			store.Persist(meeting, p)
			return nil
		},
	}

	cmd.Flags().Int64Var(&prefsColorEvent, "event", 0, "Session id to color")
	cmd.Flags().StringVar(&prefsColorHex, "hex", "", "Palette color (e.g. \"#dc3545\")")
	cmd.Flags().StringVar(&prefsColorTag, "tag", "", "Label for a palette color")

	return cmd
}

// tagPaletteColor sets the tag on the palette entry with the given hex.
func tagPaletteColor(p *prefs.Preferences, hex, tag string) bool {
	for i := range p.Colors {
		if strings.EqualFold(p.Colors[i].Hex, hex) {
			p.Colors[i].Tag = tag
			return true
		}
	}
	return false
}

// outputPalette prints the palette and per-session assignments.
func outputPalette(p *prefs.Preferences) {
	fmt.Println("Palette:")
	for _, c := range p.Colors {
		if c.Tag != "" {
			fmt.Printf("  %s  %s\n", c.Hex, c.Tag)
		} else {
			fmt.Printf("  %s\n", c.Hex)
		}
	}
	if len(p.EventColors) > 0 {
		ids := make([]int64, 0, len(p.EventColors))
		for id := range p.EventColors {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		fmt.Println("\nSession colors:")
		for _, id := range ids {
			fmt.Printf("  %d  %s\n", id, p.EventColors[id])
		}
	}
}

// newPrefsDismissNoteCommand creates the 'prefs dismiss-note' subcommand.
func newPrefsDismissNoteCommand(deps *PrefsCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss-note <text>",
		Short: "Dismiss the meeting info note",
		Long: `Dismiss the meeting info note so 'agenda show' stops printing it.

The dismissal is remembered by a hash of the note text: if the note
changes, it reappears.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, meeting, err := prefsContext(deps)
			if err != nil {
				return err
			}
			p := store.Load(meeting)
			p.DismissNote(args[0])
			store.Persist(meeting, p)

			fmt.Println("Note dismissed.")
			return nil
		},
	}
}
