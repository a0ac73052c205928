package agenda

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the name of the tracer for agenda assembly operations.
const TracerName = "agenda"

// Span attribute keys.
const (
	AttrMeeting       = "meeting"
	AttrSessionsIn    = "sessions_in"
	AttrSessionsOut   = "sessions_out"
	AttrFilterEnabled = "filter_enabled"
	AttrSearchActive  = "search_active"
	AttrPickerActive  = "picker_active"
	AttrTimezone      = "timezone"
)

// NarrowLabelWidth is the terminal width below which day headers use the
// short label format.
const NarrowLabelWidth = 100

// conferencing domains recognized when extracting a remote call-in URL
// from session note text.
var remoteCallInDomains = []string{
	"meetecho.com",
	"zoom.us",
	"webex.com",
	"meet.google.com",
	"teams.microsoft.com",
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"']+`)

// AssembleOptions carries the user state that shapes one assembly pass.
// Callers hand in a copy, so a pass sees either the old or the new state
// in full, never a partial update.
type AssembleOptions struct {
	// Filter is the keyword filter selection.
	Filter FilterParams

	// Timezone is the display timezone selection ("", "meeting", "local",
	// or an IANA name).
	Timezone string

	// Search, when non-empty, keeps only sessions whose name, group,
	// acronym, room or note contains it (case-insensitive).
	Search string

	// PickerMode with PickerVisible restricts output to picked sessions.
	PickerMode    bool
	PickerVisible bool
	Picked        map[int64]bool

	// Now anchors live-status and current-event computation. Zero means
	// time.Now.
	Now time.Time

	// Width is the terminal width driving the day label format. Zero
	// falls back to the long label.
	Width int
}

// ViewModel is the render-ready result of one assembly pass.
type ViewModel struct {
	// Sessions is the filtered, adjusted, time-sorted schedule.
	Sessions []AdjustedSession `json:"sessions"`

	// Days groups Sessions by displayed date, ascending.
	Days []DayGroup `json:"days"`

	// CurrentID is the id of the session to highlight as happening now,
	// 0 when none.
	CurrentID int64 `json:"currentId"`

	// Live reports whether the meeting is in progress.
	Live bool `json:"live"`

	// Timezone is the resolved display location name.
	Timezone string `json:"timezone"`
}

// Assemble runs the full pipeline: keyword filter, picker subset, free-text
// search, timezone adjustment and link resolution, then sorting, day
// grouping and current-event lookup. Each stage short-circuits when its
// driving state is disabled. Repeated passes over unchanged state produce
// identical output.
func Assemble(ctx context.Context, data *Data, opts AssembleOptions) (*ViewModel, error) {
	tracer := otel.Tracer(TracerName)
	_, span := tracer.Start(ctx, "agenda.assemble", trace.WithAttributes(
		attribute.String(AttrMeeting, data.Meeting.Number),
		attribute.Int(AttrSessionsIn, len(data.Schedule)),
		attribute.Bool(AttrFilterEnabled, opts.Filter.Enabled),
		attribute.Bool(AttrSearchActive, opts.Search != ""),
		attribute.Bool(AttrPickerActive, opts.PickerMode && opts.PickerVisible),
	))
	defer span.End()

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	displayLoc, tzErr := ResolveLocation(opts.Timezone, data.Meeting.Timezone)
	// tzErr means a fallback location is already in displayLoc; rendering
	// continues either way.

	meetingLoc, err := time.LoadLocation(data.Meeting.Timezone)
	if err != nil {
		// A meeting with a broken home timezone still renders, pinned to
		// the display location.
		meetingLoc = displayLoc
	}
	span.SetAttributes(attribute.String(AttrTimezone, displayLoc.String()))

	search := strings.ToLower(strings.TrimSpace(opts.Search))
	pickerActive := opts.PickerMode && opts.PickerVisible

	sessions := make([]AdjustedSession, 0, len(data.Schedule))
	for i := range data.Schedule {
		s := &data.Schedule[i]

		// Stage 1+2: keyword filter, including the unconditional
		// leadership exclusion.
		if !IsVisible(s, opts.Filter) {
			continue
		}

		// Stage 3: picker subset.
		if pickerActive && !opts.Picked[s.ID] {
			continue
		}

		// Stage 4: free-text search.
		if search != "" && !matchesSearch(s, search) {
			continue
		}

		// Stage 5: timezone adjustment and link resolution.
		adj, err := Adjust(s, meetingLoc, displayLoc)
		if err != nil {
			// One malformed session must not abort the rest of the page.
			continue
		}

		sessions = append(sessions, AdjustedSession{
			Session:       *s,
			Start:         adj.Start,
			End:           adj.End,
			DateISO:       adj.DateISO,
			StartISO:      adj.StartISO,
			EndISO:        adj.EndISO,
			DaySlug:       adj.DaySlug,
			ResolvedLinks: resolveLinks(&data.Meeting, s),
			RemoteCallIn:  remoteCallIn(s),
		})
	}

	SortSchedule(sessions)

	vm := &ViewModel{
		Sessions:  sessions,
		Days:      groupByDay(sessions, opts.Width),
		CurrentID: FindCurrentEventID(sessions, now),
		Live:      IsMeetingLive(sessions, now),
		Timezone:  displayLoc.String(),
	}

	span.SetAttributes(attribute.Int(AttrSessionsOut, len(sessions)))

	if tzErr != nil {
		return vm, tzErr
	}
	return vm, nil
}

// matchesSearch reports whether the lowercased concatenation of the
// session's searchable fields contains the search string.
func matchesSearch(s *Session, search string) bool {
	haystack := strings.ToLower(strings.Join([]string{
		s.Name, s.GroupName, s.GroupAcronym, s.Room, s.Note,
	}, " "))
	return strings.Contains(haystack, search)
}

// resolveLinks substitutes template tokens in every session link.
func resolveLinks(m *Meeting, s *Session) SessionLinks {
	return SessionLinks{
		VideoStream: resolveTemplate(s.Links.VideoStream, m, s),
		AudioStream: resolveTemplate(s.Links.AudioStream, m, s),
		Chat:        resolveTemplate(s.Links.Chat, m, s),
		Calendar:    resolveTemplate(s.Links.Calendar, m, s),
		Webex:       resolveTemplate(s.Links.Webex, m, s),
	}
}

// resolveTemplate substitutes the known tokens in a link URL template.
func resolveTemplate(template string, m *Meeting, s *Session) string {
	if template == "" {
		return ""
	}
	r := strings.NewReplacer(
		"{meeting.number}", m.Number,
		"{group.acronym}", s.GroupAcronym,
		"{short}", s.Short,
		"{order_number}", strconv.Itoa(s.OrderInMeeting),
	)
	return r.Replace(template)
}

// remoteCallIn returns the first URL in the session's note or remote
// instructions whose host matches a known conferencing domain, falling
// back to the explicit webex link.
func remoteCallIn(s *Session) string {
	for _, text := range []string{s.Note, s.RemoteInstr} {
		for _, candidate := range urlPattern.FindAllString(text, -1) {
			for _, domain := range remoteCallInDomains {
				if strings.Contains(candidate, domain) {
					return candidate
				}
			}
		}
	}
	return s.Links.Webex
}

// groupByDay buckets sessions by displayed date, ascending. Sessions are
// already sorted, so days come out in order.
func groupByDay(sessions []AdjustedSession, width int) []DayGroup {
	var days []DayGroup
	index := make(map[string]int)

	for _, s := range sessions {
		i, ok := index[s.DateISO]
		if !ok {
			i = len(days)
			index[s.DateISO] = i
			days = append(days, DayGroup{
				DateISO: s.DateISO,
				DaySlug: s.DaySlug,
				Label:   DayLabel(s.Start, width),
			})
		}
		days[i].Sessions = append(days[i].Sessions, s)
	}

	return days
}

// DayLabel formats a day header. Below NarrowLabelWidth columns the short
// form is used; the grouping key itself is always the ISO date.
func DayLabel(t time.Time, width int) string {
	if width > 0 && width < NarrowLabelWidth {
		return t.Format("Mon Jan 2")
	}
	return t.Format("Monday, January 2, 2006")
}
