package prefs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// brokenStorage fails every write, simulating an unavailable backend.
type brokenStorage struct{}

func (brokenStorage) Get(string) (string, bool) { return "", false }
func (brokenStorage) Set(string, string) error  { return errors.New("disk full") }
func (brokenStorage) Delete(string) error       { return errors.New("disk full") }

func TestDefaultPreferences(t *testing.T) {
	p := DefaultPreferences()

	if !p.AreaIndicators || !p.ColorLegend || !p.RealtimeRedLine {
		t.Errorf("default toggles wrong: %+v", p)
	}
	if p.BoldText || p.CalendarHideFiltered || p.CalendarShowPicked {
		t.Errorf("default toggles wrong: %+v", p)
	}
	if p.DefaultCalendarView != CalendarViewWeek {
		t.Errorf("DefaultCalendarView = %q, want %q", p.DefaultCalendarView, CalendarViewWeek)
	}
	if p.Timezone != "meeting" {
		t.Errorf("Timezone = %q, want meeting", p.Timezone)
	}
	if len(p.Colors) == 0 {
		t.Error("default palette is empty")
	}
	if p.EventColors == nil {
		t.Error("EventColors not initialized")
	}
}

func TestPersistLoadRoundTrip(t *testing.T) {
	store := NewStore(NewMemoryStorage(), nil)

	p := DefaultPreferences()
	p.BoldText = true
	p.Timezone = "UTC"
	p.DefaultCalendarView = CalendarViewDay
	p.EventColors[42] = "#dc3545"
	p.Pick(42)
	p.Pick(77)
	p.DismissNote("venue changed")

	store.Persist("120", p)
	got := store.Load("120")

	if !got.BoldText || got.Timezone != "UTC" || got.DefaultCalendarView != CalendarViewDay {
		t.Errorf("restored state wrong: %+v", got)
	}
	if got.EventColors[42] != "#dc3545" {
		t.Errorf("EventColors = %v", got.EventColors)
	}
	if !got.IsPicked(42) || !got.IsPicked(77) || got.IsPicked(99) {
		t.Errorf("Picked = %v", got.Picked)
	}
	if !got.NoteDismissed("venue changed") {
		t.Error("dismissed note not restored")
	}
}

func TestMeetingScopedKeysIsolated(t *testing.T) {
	store := NewStore(NewMemoryStorage(), nil)

	p := DefaultPreferences()
	p.Pick(42)
	store.Persist("120", p)

	other := store.Load("121")
	if other.IsPicked(42) {
		t.Error("picks leaked across meetings")
	}

	same := store.Load("120")
	if !same.IsPicked(42) {
		t.Error("picks lost for own meeting")
	}
}

func TestStorageFailureDegradesSilently(t *testing.T) {
	store := NewStore(brokenStorage{}, nil)

	p := DefaultPreferences()
	p.BoldText = true
	p.Pick(42)

	// Neither call has an error to return; the state lives in memory.
	store.Persist("120", p)
	got := store.Load("120")

	if !got.BoldText || !got.IsPicked(42) {
		t.Errorf("in-memory fallback lost state: %+v", got)
	}
}

func TestFreshStoreLoadsDefaults(t *testing.T) {
	store := NewStore(brokenStorage{}, nil)

	got := store.Load("120")
	want := DefaultPreferences()

	if got.AreaIndicators != want.AreaIndicators || got.Timezone != want.Timezone {
		t.Errorf("Load() = %+v, want defaults %+v", got, want)
	}
}

func TestMalformedValueFallsBackPerKey(t *testing.T) {
	backend := NewMemoryStorage()
	backend.Set(keyBoldText, "true")
	backend.Set(keyTimezone, `{not json`)
	backend.Set(keyColors, `[{"hex":"#fff","tag":"mine"}, 5]`)

	store := NewStore(backend, nil)
	got := store.Load("120")

	if !got.BoldText {
		t.Error("valid key ignored")
	}
	if got.Timezone != "meeting" {
		t.Errorf("Timezone = %q, want default after malformed value", got.Timezone)
	}
	if len(got.Colors) != len(defaultPalette()) {
		t.Errorf("Colors = %v, want full default palette", got.Colors)
	}
}

func TestNoteHashDismissal(t *testing.T) {
	p := DefaultPreferences()

	if p.NoteDismissed("welcome") {
		t.Error("fresh state reports dismissed")
	}

	p.DismissNote("welcome")
	if !p.NoteDismissed("welcome") {
		t.Error("dismissal not recorded")
	}
	if p.NoteDismissed("welcome, updated") {
		t.Error("changed note text should reappear")
	}
	if p.NoteDismissed("") {
		t.Error("empty note can never be dismissed")
	}
}

func TestPickUnpick(t *testing.T) {
	p := DefaultPreferences()

	p.Pick(1)
	p.Pick(2)
	p.Pick(1)
	if len(p.Picked) != 2 {
		t.Errorf("Picked = %v, want deduplicated", p.Picked)
	}

	p.Unpick(1)
	if p.IsPicked(1) || !p.IsPicked(2) {
		t.Errorf("Picked = %v after unpick", p.Picked)
	}

	set := p.PickedSet()
	if !set[2] || set[1] {
		t.Errorf("PickedSet() = %v", set)
	}
}

func TestFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	fs := NewFileStorage(path)

	if err := fs.Set("a", `"one"`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := fs.Set("b", `"two"`); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if v, ok := fs.Get("a"); !ok || v != `"one"` {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}

	if err := fs.Delete("a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := fs.Get("a"); ok {
		t.Error("deleted key still present")
	}

	// A second instance sees the persisted state.
	again := NewFileStorage(path)
	if v, ok := again.Get("b"); !ok || v != `"two"` {
		t.Errorf("Get(b) = %q, %v", v, ok)
	}
}

func TestFileStorageCorruptFileStartsOver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte("{corrupt"), 0644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileStorage(path)
	if _, ok := fs.Get("a"); ok {
		t.Error("corrupt file should read as empty")
	}
	if err := fs.Set("a", `"one"`); err != nil {
		t.Fatalf("Set after corruption: %v", err)
	}
	if v, ok := fs.Get("a"); !ok || v != `"one"` {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}
}

func TestProbeRunsOnce(t *testing.T) {
	backend := NewMemoryStorage()
	store := NewStore(backend, nil)

	store.Persist("120", DefaultPreferences())

	if _, ok := backend.Get(probeKey); ok {
		t.Error("probe sentinel left behind")
	}
	if store.backend() != Storage(backend) {
		t.Error("healthy backend not kept after probe")
	}
}
