package agenda

import (
	"fmt"
	"sort"
	"strings"
	"time"

	trerrors "github.com/otherjamesbrown/tracka-cli/pkg/errors"
)

// Timezone shorthands accepted wherever an IANA name is.
const (
	TimezoneMeeting = "meeting"
	TimezoneLocal   = "local"
)

// ResolveLocation resolves a display timezone selection against the
// meeting timezone. Empty or "meeting" selects the meeting timezone,
// "local" the local one. An unresolvable name falls back to the local
// timezone; the returned error lets callers log the fallback without
// aborting rendering.
func ResolveLocation(name, meetingTimezone string) (*time.Location, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", TimezoneMeeting:
		loc, err := time.LoadLocation(meetingTimezone)
		if err != nil {
			return time.Local, fmt.Errorf("resolving meeting timezone %q: %w", meetingTimezone, trerrors.ErrBadTimezone)
		}
		return loc, nil
	case TimezoneLocal:
		return time.Local, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local, fmt.Errorf("resolving timezone %q: %w", name, trerrors.ErrBadTimezone)
	}
	return loc, nil
}

// Adjusted holds the display-timezone annotations for one session.
type Adjusted struct {
	Start    time.Time
	End      time.Time
	DateISO  string
	StartISO string
	EndISO   string
	DaySlug  string
}

// Adjust converts a session's naive start time into the display timezone.
//
// The wire value is wall-clock time in the meeting timezone. The absolute
// instant is computed by attaching the meeting zone, then re-rendered in
// the display zone. End is start plus the duration in absolute-instant
// space, so a DST transition inside the session does not stretch or
// shrink it. The day-grouping key comes from the displayed date: changing
// the display timezone can legitimately move a session across a midnight
// boundary into another day bucket.
func Adjust(s *Session, meetingLoc, displayLoc *time.Location) (Adjusted, error) {
	start, err := time.ParseInLocation(NaiveTimeLayout, s.StartDateTime, meetingLoc)
	if err != nil {
		return Adjusted{}, fmt.Errorf("parsing session %d start %q: %w", s.ID, s.StartDateTime, err)
	}

	end := start.Add(time.Duration(s.Duration) * time.Second)

	displayStart := start.In(displayLoc)
	displayEnd := end.In(displayLoc)

	return Adjusted{
		Start:    displayStart,
		End:      displayEnd,
		DateISO:  displayStart.Format("2006-01-02"),
		StartISO: displayStart.Format(time.RFC3339),
		EndISO:   displayEnd.Format(time.RFC3339),
		DaySlug:  daySlug(displayStart),
	}, nil
}

// daySlug derives the stable anchor identifier for a displayed day.
func daySlug(t time.Time) string {
	return strings.ToLower(t.Format("Mon-2006-01-02"))
}

// SortSchedule orders adjusted sessions by start time ascending, breaking
// ties by server order then id so repeated assembly passes are stable.
func SortSchedule(sessions []AdjustedSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].Start.Equal(sessions[j].Start) {
			if sessions[i].OrderInMeeting == sessions[j].OrderInMeeting {
				return sessions[i].ID < sessions[j].ID
			}
			return sessions[i].OrderInMeeting < sessions[j].OrderInMeeting
		}
		return sessions[i].Start.Before(sessions[j].Start)
	})
}

// IsMeetingLive reports whether the meeting is in progress at now.
//
// The check is two independent existence tests over the whole set: some
// session has started, and some session has not yet ended. The session
// providing one piece of evidence need not be the one providing the
// other, so a gap between sessions still reports live.
func IsMeetingLive(sessions []AdjustedSession, now time.Time) bool {
	anyStarted := false
	anyUnfinished := false
	for i := range sessions {
		if !sessions[i].Start.After(now) {
			anyStarted = true
		}
		if sessions[i].End.After(now) {
			anyUnfinished = true
		}
		if anyStarted && anyUnfinished {
			return true
		}
	}
	return false
}

// FindCurrentEventID scans a start-time-sorted schedule and returns the id
// of the session to highlight as "now": the latest-starting session that
// has begun and not yet ended. Among sessions sharing a start time the
// first encountered wins. Scanning stops at the first future start, which
// relies on the ascending sort. Returns 0 when nothing is current.
func FindCurrentEventID(sorted []AdjustedSession, now time.Time) int64 {
	var currentID int64
	var currentStart time.Time

	for i := range sorted {
		s := &sorted[i]
		if s.Start.After(now) {
			break
		}
		if s.End.After(now) {
			if currentID == 0 || s.Start.After(currentStart) {
				currentID = s.ID
				currentStart = s.Start
			}
		}
	}

	return currentID
}
