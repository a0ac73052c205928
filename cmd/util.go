package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/otherjamesbrown/tracka-cli/config"
	"github.com/otherjamesbrown/tracka-cli/pkg/agenda"
	"github.com/otherjamesbrown/tracka-cli/pkg/logging"
	"github.com/otherjamesbrown/tracka-cli/pkg/prefs"
)

// typeCaser title-cases session type keywords for display.
var typeCaser = cases.Title(language.English)

// resolvedConfig holds the configuration the root command loaded and
// overrode with its persistent flags. Subcommands prefer it over a fresh
// load so flag overrides reach them.
var resolvedConfig *config.CLIConfig

// SetResolvedConfig installs the root-resolved configuration for
// subcommand use. Passing nil reverts to direct loading.
func SetResolvedConfig(cfg *config.CLIConfig) {
	resolvedConfig = cfg
}

// loadResolvedConfig returns the root-resolved configuration when one was
// installed, falling back to a direct load.
func loadResolvedConfig() (*config.CLIConfig, error) {
	if resolvedConfig != nil {
		return resolvedConfig, nil
	}
	return config.LoadConfig()
}

// commandLogger returns the provided logger, falling back to the global
// one so command paths never have to nil-check and still honor the
// root-configured level and sinks.
func commandLogger(log logging.Logger) logging.Logger {
	if log != nil {
		return log
	}
	return logging.MustGlobal()
}

// newPrefsStore builds the file-backed preference store under the config
// directory. An unusable directory degrades to in-memory state inside the
// store, never here.
func newPrefsStore(cfg *config.CLIConfig, log logging.Logger) *prefs.Store {
	dir, err := config.ConfigDir()
	if err != nil {
		return prefs.NewStore(prefs.NewMemoryStorage(), log)
	}
	return prefs.NewStore(prefs.NewFileStorage(filepath.Join(dir, "prefs.json")), log)
}

// terminalWidth reports the stdout terminal width, 0 when not a terminal.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// outputAgenda formats and outputs the assembled agenda. infoNote is an
// advisory line shown only in text mode so machine-readable output stays
// parseable.
func outputAgenda(out io.Writer, format config.OutputFormat, data *agenda.Data, vm *agenda.ViewModel, infoNote string) error {
	switch format {
	case config.OutputFormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"meeting":  data.Meeting,
			"timezone": vm.Timezone,
			"live":     vm.Live,
			"days":     vm.Days,
			"count":    len(vm.Sessions),
		})
	case config.OutputFormatYAML:
		enc := yaml.NewEncoder(out)
		return enc.Encode(map[string]interface{}{
			"meeting":  data.Meeting,
			"timezone": vm.Timezone,
			"live":     vm.Live,
			"days":     vm.Days,
			"count":    len(vm.Sessions),
		})
	default:
		return outputAgendaText(out, data, vm, infoNote)
	}
}

// outputAgendaText formats the agenda for terminal display, grouped by
// day with a marker on the current session.
func outputAgendaText(out io.Writer, data *agenda.Data, vm *agenda.ViewModel, infoNote string) error {
	if infoNote != "" {
		fmt.Fprintf(out, "Note: %s\n\n", infoNote)
	}

	header := fmt.Sprintf("IETF %s", data.Meeting.Number)
	if data.Meeting.City != "" {
		header += ", " + data.Meeting.City
	}
	fmt.Fprintf(out, "%s (times in %s)\n", header, vm.Timezone)
	if vm.Live {
		fmt.Fprintln(out, "Meeting in progress.")
	}
	fmt.Fprintln(out)

	if len(vm.Sessions) == 0 {
		fmt.Fprintln(out, "No sessions match the current filter.")
		return nil
	}

	for _, day := range vm.Days {
		fmt.Fprintf(out, "%s\n", day.Label)

		for _, s := range day.Sessions {
			marker := "  "
			if vm.CurrentID != 0 && s.ID == vm.CurrentID {
				marker = "> "
			}

			name := s.Name
			if len(name) > 45 {
				name = name[:42] + "..."
			}

			room := s.Room
			if len(room) > 18 {
				room = room[:15] + "..."
			}

			fmt.Fprintf(out, "%s%s–%s  %-10s %-45s %-18s %s\n",
				marker,
				s.Start.Format("15:04"),
				s.End.Format("15:04"),
				s.GroupAcronym,
				name,
				room,
				typeCaser.String(s.Type),
			)
		}

		fmt.Fprintln(out)
	}

	return nil
}
