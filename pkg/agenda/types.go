// Package agenda implements the conference agenda engine: the session data
// model, keyword filtering, timezone adjustment, query-string state, and the
// view-model assembly that the CLI renders.
package agenda

import (
	"strings"
	"time"
)

// NaiveTimeLayout is the layout of session start times on the wire. The
// value is wall-clock time in the meeting's timezone with no zone attached.
const NaiveTimeLayout = "2006-01-02T15:04:05"

// Session type keywords with special handling.
const (
	// TypeLead marks leadership sessions, which are never shown regardless
	// of filter state.
	TypeLead = "lead"

	// TypePlenary and TypeRegular are ordinary session type keywords used
	// by the type toggle buttons.
	TypePlenary = "plenary"
	TypeRegular = "regular"
)

// Meeting describes the meeting whose agenda was fetched.
type Meeting struct {
	Number    string `json:"number"`
	City      string `json:"city"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Timezone  string `json:"timezone"`
	InfoNote  string `json:"infoNote"`
}

// SessionLinks holds the per-session link URL templates delivered by the
// server. Templates may contain the tokens {meeting.number}, {group.acronym},
// {short} and {order_number}.
type SessionLinks struct {
	VideoStream string `json:"videoStream"`
	AudioStream string `json:"audioStream"`
	Chat        string `json:"chat"`
	Calendar    string `json:"calendar"`
	Webex       string `json:"webex"`
}

// Session is one scheduled agenda item as delivered by the server. The
// client never mutates a Session's source fields, only derives annotated
// copies.
type Session struct {
	ID             int64        `json:"id"`
	Name           string       `json:"name"`
	Short          string       `json:"short"`
	GroupAcronym   string       `json:"groupAcronym"`
	GroupName      string       `json:"groupName"`
	Area           string       `json:"area"`
	Type           string       `json:"type"`
	IsBoF          bool         `json:"isBoF"`
	FilterKeywords []string     `json:"filterKeywords"`
	StartDateTime  string       `json:"startDateTime"`
	Duration       int          `json:"duration"`
	Room           string       `json:"room"`
	Location       string       `json:"location"`
	Note           string       `json:"note"`
	RemoteInstr    string       `json:"remoteInstructions"`
	OrderInMeeting int          `json:"orderInMeeting"`
	Links          SessionLinks `json:"links"`
}

// HasKeyword reports whether the session carries the given filter keyword.
// Keywords are lowercase on the wire; the argument is lowered before the
// comparison so callers can pass user input directly.
func (s *Session) HasKeyword(keyword string) bool {
	keyword = strings.ToLower(keyword)
	for _, kw := range s.FilterKeywords {
		if kw == keyword {
			return true
		}
	}
	return false
}

// Group is one working group inside an area of the category tree.
type Group struct {
	Label   string `json:"label"`
	Keyword string `json:"keyword"`
	IsBoF   bool   `json:"isBoF"`
}

// Area is a top-level grouping of working groups in the agenda hierarchy.
type Area struct {
	Label   string  `json:"label"`
	Keyword string  `json:"keyword"`
	Groups  []Group `json:"children"`
}

// Floor describes one venue floor and its rooms.
type Floor struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Rooms []string `json:"rooms"`
}

// Data is the full agenda-data payload delivered once per fetch.
type Data struct {
	Meeting          Meeting   `json:"meeting"`
	Categories       [][]Area  `json:"categories"`
	Schedule         []Session `json:"schedule"`
	Floors           []Floor   `json:"floors"`
	IsCurrentMeeting bool      `json:"isCurrentMeeting"`
	UsesNotes        bool      `json:"usesNotes"`
}

// AdjustedSession is a Session annotated with display-timezone times,
// grouping keys and resolved links. It is recomputed on every assembly
// pass, never stored.
type AdjustedSession struct {
	Session

	// Start and End are the session bounds rendered in the display
	// timezone. End is Start plus the duration in absolute-instant space.
	Start time.Time `json:"adjustedStart"`
	End   time.Time `json:"adjustedEnd"`

	// DateISO is the displayed calendar date (YYYY-MM-DD) used as the
	// day-grouping key. Changing the display timezone can move a session
	// into a different day bucket near midnight.
	DateISO  string `json:"adjustedDate"`
	StartISO string `json:"adjustedStartISO"`
	EndISO   string `json:"adjustedEndISO"`

	// DaySlug is the stable anchor identifier for the displayed day.
	DaySlug string `json:"daySlug"`

	// ResolvedLinks are the link templates with tokens substituted.
	ResolvedLinks SessionLinks `json:"resolvedLinks"`

	// RemoteCallIn is the first conferencing URL found in the session's
	// note or remote instructions, falling back to the webex link.
	RemoteCallIn string `json:"remoteCallIn"`
}

// DayGroup is one day header plus its sessions, in display order.
type DayGroup struct {
	DateISO  string            `json:"date"`
	DaySlug  string            `json:"slug"`
	Label    string            `json:"label"`
	Sessions []AdjustedSession `json:"sessions"`
}
