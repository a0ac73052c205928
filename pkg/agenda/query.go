package agenda

import (
	"net/url"
	"strings"
)

// Query parameter keys understood by the filter state.
const (
	queryShow      = "show"
	queryHide      = "hide"
	queryShowTypes = "showtypes"
	queryHideTypes = "hidetypes"
)

// ParseQuery restores FilterParams from a query string. Keys map to
// comma-separated, trimmed, lowercased token lists. A key present with no
// value still enables filtering, with an empty list; that state hides
// every session carrying keywords and is preserved deliberately.
func ParseQuery(query string) FilterParams {
	var p FilterParams

	values, err := url.ParseQuery(strings.TrimPrefix(query, "?"))
	if err != nil {
		// An unparseable query string leaves filtering disabled rather
		// than aborting the page.
		return p
	}

	if raw, ok := values[queryShow]; ok {
		p.Enabled = true
		p.Show = splitTokens(raw)
	}
	if raw, ok := values[queryHide]; ok {
		p.Enabled = true
		p.Hide = splitTokens(raw)
	}
	if raw, ok := values[queryShowTypes]; ok {
		p.Enabled = true
		p.ShowTypes = splitTokens(raw)
	}
	if raw, ok := values[queryHideTypes]; ok {
		p.Enabled = true
		p.HideTypes = splitTokens(raw)
	}

	return p
}

// splitTokens flattens repeated values and comma-separated lists into
// normalized tokens, dropping empties.
func splitTokens(raw []string) []string {
	var out []string
	for _, value := range raw {
		for _, token := range strings.Split(value, ",") {
			token = normalizeToken(token)
			if token == "" {
				continue
			}
			out = addToken(out, token)
		}
	}
	return out
}

// SerializeQuery renders FilterParams as a query string. Only non-empty
// lists produce parameters, in the fixed order show, hide, showtypes,
// hidetypes. The result carries no leading "?".
func SerializeQuery(p FilterParams) string {
	var parts []string
	appendList := func(key string, list []string) {
		if len(list) == 0 {
			return
		}
		parts = append(parts, key+"="+url.QueryEscape(strings.Join(list, ",")))
	}

	appendList(queryShow, p.Show)
	appendList(queryHide, p.Hide)
	appendList(queryShowTypes, p.ShowTypes)
	appendList(queryHideTypes, p.HideTypes)

	return strings.Join(parts, "&")
}

// BuildShareURL appends the serialized filter state to an agenda page URL,
// producing a shareable filtered view link.
func BuildShareURL(pageURL string, p FilterParams) string {
	query := SerializeQuery(p)
	if query == "" {
		return pageURL
	}
	if strings.Contains(pageURL, "?") {
		return pageURL + "&" + query
	}
	return pageURL + "?" + query
}

// Navigator applies filter-state changes to the current address. Replace
// updates the address without growing history; implementations that cannot
// replace fall back to a full navigation. Both paths converge on the same
// current address.
type Navigator interface {
	// Replace makes target the current address.
	Replace(target string)
	// Current returns the address last applied.
	Current() string
}

// HistoryNavigator tracks an address stack and overwrites the top entry on
// Replace, so restoring state never pollutes back-navigation.
type HistoryNavigator struct {
	entries []string
}

// NewHistoryNavigator starts a navigator at the given address.
func NewHistoryNavigator(initial string) *HistoryNavigator {
	return &HistoryNavigator{entries: []string{initial}}
}

// Replace overwrites the current entry.
func (n *HistoryNavigator) Replace(target string) {
	if len(n.entries) == 0 {
		n.entries = []string{target}
		return
	}
	n.entries[len(n.entries)-1] = target
}

// Push records a new entry.
func (n *HistoryNavigator) Push(target string) {
	n.entries = append(n.entries, target)
}

// Current returns the top entry.
func (n *HistoryNavigator) Current() string {
	if len(n.entries) == 0 {
		return ""
	}
	return n.entries[len(n.entries)-1]
}

// Depth returns the number of history entries.
func (n *HistoryNavigator) Depth() int {
	return len(n.entries)
}

// ReloadNavigator is the fallback for environments without replace
// support: every change is a fresh navigation. It converges on the same
// current address as HistoryNavigator.
type ReloadNavigator struct {
	visited []string
}

// Replace navigates to the target outright.
func (n *ReloadNavigator) Replace(target string) {
	n.visited = append(n.visited, target)
}

// Current returns the address of the latest navigation.
func (n *ReloadNavigator) Current() string {
	if len(n.visited) == 0 {
		return ""
	}
	return n.visited[len(n.visited)-1]
}

// SyncToURL serializes the filter state onto the agenda page URL and
// applies it through the navigator.
func SyncToURL(nav Navigator, pageURL string, p FilterParams) string {
	target := BuildShareURL(pageURL, p)
	nav.Replace(target)
	return target
}
