package agenda

import "strings"

// FilterParams is the current filter selection. The zero value means
// filtering is disabled, which leaves every session visible.
type FilterParams struct {
	// Enabled is true iff any show/hide/type list is non-empty, or the
	// state was restored from a query string that named a filter key.
	// A key present with no value enables filtering with an empty list,
	// which hides every session that carries keywords.
	Enabled bool `json:"enabled"`

	// Show lists keywords to include. Hide takes precedence over Show.
	Show []string `json:"show"`
	Hide []string `json:"hide"`

	// ShowTypes and HideTypes are the analogous lists driven by the
	// session-type buttons.
	ShowTypes []string `json:"showTypes"`
	HideTypes []string `json:"hideTypes"`
}

// normalizeToken trims and lowercases a filter keyword.
func normalizeToken(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

// containsToken reports set membership in a keyword list.
func containsToken(list []string, token string) bool {
	for _, t := range list {
		if t == token {
			return true
		}
	}
	return false
}

// addToken appends a keyword if not already present.
func addToken(list []string, token string) []string {
	if containsToken(list, token) {
		return list
	}
	return append(list, token)
}

// removeToken removes every occurrence of a keyword. It always copies so
// toggles never alias the caller's backing array.
func removeToken(list []string, token string) []string {
	out := make([]string, 0, len(list))
	for _, t := range list {
		if t != token {
			out = append(out, t)
		}
	}
	return out
}

// matchesAny reports whether the session carries any keyword from the list.
func matchesAny(s *Session, tokens []string) bool {
	for _, t := range tokens {
		if s.HasKeyword(t) {
			return true
		}
	}
	return false
}

// refreshEnabled recomputes Enabled from the list contents. It runs after
// every toggle, so an explicit empty-but-enabled state survives only until
// the next user interaction, matching the query-string edge case.
func (p *FilterParams) refreshEnabled() {
	p.Enabled = len(p.Show) > 0 || len(p.Hide) > 0 || len(p.ShowTypes) > 0 || len(p.HideTypes) > 0
}

// IsVisible decides whether a session passes the current filter.
//
// Leadership sessions are always excluded. With filtering disabled, or for
// a session carrying no keywords, the session is visible. Otherwise the
// session is visible iff none of its keywords is hidden and at least one
// is shown; hide wins over show.
func IsVisible(s *Session, p FilterParams) bool {
	if s.Type == TypeLead {
		return false
	}
	if !p.Enabled || len(s.FilterKeywords) == 0 {
		return true
	}

	hide := append(append([]string{}, p.Hide...), p.HideTypes...)
	show := append(append([]string{}, p.Show...), p.ShowTypes...)

	if matchesAny(s, hide) {
		return false
	}
	return matchesAny(s, show)
}

// toggleListItem flips the keyword's presence in the positive list and
// removes it from the paired negative list. Applying the same toggle twice
// returns both lists to their original state.
func toggleListItem(positive, negative []string, token string) ([]string, []string) {
	negative = removeToken(negative, token)
	if containsToken(positive, token) {
		positive = removeToken(positive, token)
	} else {
		positive = addToken(positive, token)
	}
	return positive, negative
}

// ToggleShow flips a keyword in the show list, clearing it from hide.
func (p FilterParams) ToggleShow(keyword string) FilterParams {
	p = p.Clone()
	token := normalizeToken(keyword)
	p.Show, p.Hide = toggleListItem(p.Show, p.Hide, token)
	p.refreshEnabled()
	return p
}

// ToggleHide flips a keyword in the hide list, clearing it from show.
func (p FilterParams) ToggleHide(keyword string) FilterParams {
	p = p.Clone()
	token := normalizeToken(keyword)
	p.Hide, p.Show = toggleListItem(p.Hide, p.Show, token)
	p.refreshEnabled()
	return p
}

// ToggleShowType flips a session type in the show-types list.
func (p FilterParams) ToggleShowType(sessionType string) FilterParams {
	p = p.Clone()
	token := normalizeToken(sessionType)
	p.ShowTypes, p.HideTypes = toggleListItem(p.ShowTypes, p.HideTypes, token)
	p.refreshEnabled()
	return p
}

// ToggleHideType flips a session type in the hide-types list.
func (p FilterParams) ToggleHideType(sessionType string) FilterParams {
	p = p.Clone()
	token := normalizeToken(sessionType)
	p.HideTypes, p.ShowTypes = toggleListItem(p.HideTypes, p.ShowTypes, token)
	p.refreshEnabled()
	return p
}

// SelectArea adds every group keyword beneath the area to the show list,
// clearing each from hide. Selecting an area is shorthand for selecting
// all of its groups.
func (p FilterParams) SelectArea(area Area) FilterParams {
	p = p.Clone()
	for _, g := range area.Groups {
		token := normalizeToken(g.Keyword)
		p.Hide = removeToken(p.Hide, token)
		p.Show = addToken(p.Show, token)
	}
	p.refreshEnabled()
	return p
}

// DeselectArea removes every group keyword beneath the area from the show
// list, leaving hide untouched.
func (p FilterParams) DeselectArea(area Area) FilterParams {
	p = p.Clone()
	for _, g := range area.Groups {
		p.Show = removeToken(p.Show, normalizeToken(g.Keyword))
	}
	p.refreshEnabled()
	return p
}

// AreaActive reports whether the area's header button should render as
// active: every contained group is shown and none is separately hidden.
func (p FilterParams) AreaActive(area Area) bool {
	if len(area.Groups) == 0 {
		return false
	}
	for _, g := range area.Groups {
		token := normalizeToken(g.Keyword)
		if containsToken(p.Hide, token) {
			return false
		}
		if !containsToken(p.Show, token) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy. Assembly passes take a copy so a recompute
// sees either the old or the new filter state in full, never a partial
// update.
func (p FilterParams) Clone() FilterParams {
	out := FilterParams{Enabled: p.Enabled}
	out.Show = append([]string{}, p.Show...)
	out.Hide = append([]string{}, p.Hide...)
	out.ShowTypes = append([]string{}, p.ShowTypes...)
	out.HideTypes = append([]string{}, p.HideTypes...)
	return out
}

// Equal reports semantic equality: same enabled state and same list
// contents regardless of ordering.
func (p FilterParams) Equal(other FilterParams) bool {
	if p.Enabled != other.Enabled {
		return false
	}
	lists := [][2][]string{
		{p.Show, other.Show},
		{p.Hide, other.Hide},
		{p.ShowTypes, other.ShowTypes},
		{p.HideTypes, other.HideTypes},
	}
	for _, pair := range lists {
		if !sameTokens(pair[0], pair[1]) {
			return false
		}
	}
	return true
}

// sameTokens compares two keyword lists as sets.
func sameTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, t := range a {
		if !containsToken(b, t) {
			return false
		}
	}
	return true
}
