package prefs

import (
	"encoding/json"
	"fmt"
	"hash/fnv"

	"github.com/otherjamesbrown/tracka-cli/pkg/logging"
)

// Meeting-independent keys.
const (
	keyAreaIndicators       = "areaIndicators"
	keyBoldText             = "boldText"
	keyColorLegend          = "colorLegend"
	keyRealtimeRedLine      = "realtimeRedLine"
	keyCalendarHideFiltered = "calendarHideFiltered"
	keyCalendarShowPicked   = "calendarShowPicked"
	keyColors               = "colors"
	keyDefaultCalendarView  = "defaultCalendarView"
	keyTimezone             = "timezone"
)

// Meeting-scoped key suffixes, stored as agenda.<meeting>.<suffix>.
const (
	keyEventColors       = "eventColors"
	keyDismissedNoteHash = "dismissedNoteHash"
	keyPickedSessions    = "pickedSessions"
)

// Calendar view values.
const (
	CalendarViewWeek = "week"
	CalendarViewDay  = "day"
)

// Color is one entry of the user's highlight palette.
type Color struct {
	Hex string `json:"hex"`
	Tag string `json:"tag"`
}

// Preferences is the full preference state for one meeting: the
// meeting-independent display toggles plus the meeting-scoped picks,
// colors and note dismissal.
type Preferences struct {
	// Display toggles, shared across meetings.
	AreaIndicators       bool `json:"areaIndicators"`
	BoldText             bool `json:"boldText"`
	ColorLegend          bool `json:"colorLegend"`
	RealtimeRedLine      bool `json:"realtimeRedLine"`
	CalendarHideFiltered bool `json:"calendarHideFiltered"`
	CalendarShowPicked   bool `json:"calendarShowPicked"`

	// Colors is the highlight palette.
	Colors []Color `json:"colors"`

	// DefaultCalendarView is "week" or "day".
	DefaultCalendarView string `json:"defaultCalendarView"`

	// Timezone is the saved display timezone selection.
	Timezone string `json:"timezone"`

	// EventColors assigns palette colors to individual sessions.
	EventColors map[int64]string `json:"eventColors"`

	// DismissedNoteHash is the hash of the info note the user dismissed.
	DismissedNoteHash string `json:"dismissedNoteHash"`

	// Picked is the picker-mode session subset.
	Picked []int64 `json:"picked"`
}

// DefaultPreferences returns the documented defaults, used both for a
// fresh profile and per-key when stored data is malformed.
func DefaultPreferences() *Preferences {
	return &Preferences{
		AreaIndicators:      true,
		ColorLegend:         true,
		RealtimeRedLine:     true,
		Colors:              defaultPalette(),
		DefaultCalendarView: CalendarViewWeek,
		Timezone:            "meeting",
		EventColors:         make(map[int64]string),
	}
}

func defaultPalette() []Color {
	return []Color{
		{Hex: "#0d6efd", Tag: ""},
		{Hex: "#dc3545", Tag: ""},
		{Hex: "#198754", Tag: ""},
		{Hex: "#fd7e14", Tag: ""},
		{Hex: "#6f42c1", Tag: ""},
		{Hex: "#20c997", Tag: ""},
	}
}

// meetingKey namespaces a setting under one meeting.
func meetingKey(meeting, suffix string) string {
	return fmt.Sprintf("agenda.%s.%s", meeting, suffix)
}

// NoteHash returns the short non-cryptographic hash used to remember a
// dismissed info note. Changed note text hashes differently, so an edited
// note reappears.
func NoteHash(text string) string {
	h := fnv.New32a()
	h.Write([]byte(text))
	return fmt.Sprintf("%08x", h.Sum32())
}

// DismissNote records the current info note as dismissed.
func (p *Preferences) DismissNote(text string) {
	p.DismissedNoteHash = NoteHash(text)
}

// NoteDismissed reports whether the given info note text was dismissed.
func (p *Preferences) NoteDismissed(text string) bool {
	return text != "" && p.DismissedNoteHash == NoteHash(text)
}

// IsPicked reports whether a session is in the picker subset.
func (p *Preferences) IsPicked(id int64) bool {
	for _, picked := range p.Picked {
		if picked == id {
			return true
		}
	}
	return false
}

// Pick adds a session to the picker subset.
func (p *Preferences) Pick(id int64) {
	if !p.IsPicked(id) {
		p.Picked = append(p.Picked, id)
	}
}

// Unpick removes a session from the picker subset.
func (p *Preferences) Unpick(id int64) {
	out := p.Picked[:0]
	for _, picked := range p.Picked {
		if picked != id {
			out = append(out, picked)
		}
	}
	p.Picked = out
}

// PickedSet returns the picker subset as a lookup map.
func (p *Preferences) PickedSet() map[int64]bool {
	set := make(map[int64]bool, len(p.Picked))
	for _, id := range p.Picked {
		set[id] = true
	}
	return set
}

// getJSON decodes one stored key into out. Missing or malformed values
// leave out at its preset default; decoding goes through a scratch value
// so a half-parsed payload never leaks into the result.
func getJSON[T any](s *Store, key string, out *T) {
	raw, ok := s.backend().Get(key)
	if !ok {
		return
	}
	var decoded T
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		s.log.Debug("ignoring malformed stored preference", logging.F("key", key), logging.Err(err))
		return
	}
	*out = decoded
}

// setJSON encodes one value under the key. Failures degrade silently.
func (s *Store) setJSON(key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.log.Debug("skipping unencodable preference", logging.F("key", key), logging.Err(err))
		return
	}
	if err := s.backend().Set(key, string(raw)); err != nil {
		s.log.Debug("preference write failed", logging.F("key", key), logging.Err(err))
	}
}

// Load reads the preference state for a meeting. Every key falls back to
// its default when missing or malformed; Load never fails.
func (s *Store) Load(meeting string) *Preferences {
	p := DefaultPreferences()

	getJSON(s, keyAreaIndicators, &p.AreaIndicators)
	getJSON(s, keyBoldText, &p.BoldText)
	getJSON(s, keyColorLegend, &p.ColorLegend)
	getJSON(s, keyRealtimeRedLine, &p.RealtimeRedLine)
	getJSON(s, keyCalendarHideFiltered, &p.CalendarHideFiltered)
	getJSON(s, keyCalendarShowPicked, &p.CalendarShowPicked)
	getJSON(s, keyColors, &p.Colors)
	getJSON(s, keyDefaultCalendarView, &p.DefaultCalendarView)
	getJSON(s, keyTimezone, &p.Timezone)

	getJSON(s, meetingKey(meeting, keyEventColors), &p.EventColors)
	getJSON(s, meetingKey(meeting, keyDismissedNoteHash), &p.DismissedNoteHash)
	getJSON(s, meetingKey(meeting, keyPickedSessions), &p.Picked)

	if p.EventColors == nil {
		p.EventColors = make(map[int64]string)
	}
	return p
}

// Persist writes the preference state for a meeting. Persist never fails;
// an unavailable backend keeps the state in memory for this process.
func (s *Store) Persist(meeting string, p *Preferences) {
	s.setJSON(keyAreaIndicators, p.AreaIndicators)
	s.setJSON(keyBoldText, p.BoldText)
	s.setJSON(keyColorLegend, p.ColorLegend)
	s.setJSON(keyRealtimeRedLine, p.RealtimeRedLine)
	s.setJSON(keyCalendarHideFiltered, p.CalendarHideFiltered)
	s.setJSON(keyCalendarShowPicked, p.CalendarShowPicked)
	s.setJSON(keyColors, p.Colors)
	s.setJSON(keyDefaultCalendarView, p.DefaultCalendarView)
	s.setJSON(keyTimezone, p.Timezone)

	s.setJSON(meetingKey(meeting, keyEventColors), p.EventColors)
	s.setJSON(meetingKey(meeting, keyDismissedNoteHash), p.DismissedNoteHash)
	s.setJSON(meetingKey(meeting, keyPickedSessions), p.Picked)
}
