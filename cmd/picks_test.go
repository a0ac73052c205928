package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/tracka-cli/config"
	"github.com/otherjamesbrown/tracka-cli/pkg/logging"
	"github.com/otherjamesbrown/tracka-cli/pkg/prefs"
)

// createPicksTestDeps creates test dependencies backed by one shared
// in-memory store, so state survives across subcommand runs.
func createPicksTestDeps(cfg *config.CLIConfig) *PicksCommandDeps {
	store := prefs.NewStore(prefs.NewMemoryStorage(), nil)
	return &PicksCommandDeps{
		Config: cfg,
		LoadConfig: func() (*config.CLIConfig, error) {
			return cfg, nil
		},
		NewStore: func(c *config.CLIConfig, log logging.Logger) *prefs.Store {
			return store
		},
	}
}

func resetPicksFlags() {
	picksMeeting = ""
	picksOutputFormat = ""
}

func TestNewPicksCommand(t *testing.T) {
	cmd := NewPicksCommand(nil)

	assert.NotNil(t, cmd)
	assert.Equal(t, "picks", cmd.Use)
	assert.Len(t, cmd.Commands(), 3)
}

func TestParseSessionIDs(t *testing.T) {
	ids, err := parseSessionIDs([]string{"1", "34512"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 34512}, ids)

	_, err = parseSessionIDs([]string{"not-a-number"})
	assert.Error(t, err)
}

func TestPicksAddRemoveFlow(t *testing.T) {
	t.Cleanup(resetPicksFlags)
	resetPicksFlags()

	deps := createPicksTestDeps(mockAgendaConfig())
	root := NewPicksCommand(deps)

	root.SetArgs([]string{"add", "34512", "34513"})
	require.NoError(t, root.Execute())

	store := deps.NewStore(nil, nil)
	p := store.Load("120")
	assert.True(t, p.IsPicked(34512))
	assert.True(t, p.IsPicked(34513))

	root.SetArgs([]string{"remove", "34512"})
	require.NoError(t, root.Execute())

	p = store.Load("120")
	assert.False(t, p.IsPicked(34512))
	assert.True(t, p.IsPicked(34513))
}

func TestPicksRequireMeeting(t *testing.T) {
	t.Cleanup(resetPicksFlags)
	resetPicksFlags()

	cfg := mockAgendaConfig()
	cfg.Meeting = ""
	deps := createPicksTestDeps(cfg)

	root := NewPicksCommand(deps)
	root.SetArgs([]string{"list"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "meeting")
}

func TestPicksMeetingFlagOverridesConfig(t *testing.T) {
	t.Cleanup(resetPicksFlags)
	resetPicksFlags()

	deps := createPicksTestDeps(mockAgendaConfig())
	root := NewPicksCommand(deps)

	root.SetArgs([]string{"add", "1", "--meeting", "121"})
	require.NoError(t, root.Execute())

	store := deps.NewStore(nil, nil)
	assert.True(t, store.Load("121").IsPicked(1))
	assert.False(t, store.Load("120").IsPicked(1))
}
