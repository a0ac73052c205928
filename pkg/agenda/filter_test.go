package agenda

import (
	"testing"
)

func session(id int64, sessionType string, keywords ...string) Session {
	return Session{
		ID:             id,
		Type:           sessionType,
		FilterKeywords: keywords,
	}
}

func TestIsVisible(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		params  FilterParams
		want    bool
	}{
		{
			name:    "disabled filter shows everything",
			session: session(1, TypeRegular, "httpbis", "wit"),
			params:  FilterParams{},
			want:    true,
		},
		{
			name:    "lead session hidden even when disabled",
			session: session(2, TypeLead, "iesg"),
			params:  FilterParams{},
			want:    false,
		},
		{
			name:    "lead session hidden even when explicitly shown",
			session: session(3, TypeLead, "iesg"),
			params:  FilterParams{Enabled: true, Show: []string{"iesg"}},
			want:    false,
		},
		{
			name:    "keywordless session survives any filter",
			session: session(4, TypeRegular),
			params:  FilterParams{Enabled: true, Show: []string{"httpbis"}},
			want:    true,
		},
		{
			name:    "shown keyword matches",
			session: session(5, TypeRegular, "httpbis", "art"),
			params:  FilterParams{Enabled: true, Show: []string{"httpbis"}},
			want:    true,
		},
		{
			name:    "unlisted keyword filtered out",
			session: session(6, TypeRegular, "dnsop"),
			params:  FilterParams{Enabled: true, Show: []string{"httpbis"}},
			want:    false,
		},
		{
			name:    "hide wins over show on the same session",
			session: session(7, TypeRegular, "httpbis", "art"),
			params:  FilterParams{Enabled: true, Show: []string{"httpbis"}, Hide: []string{"art"}},
			want:    false,
		},
		{
			name:    "hide type wins over shown keyword",
			session: session(8, TypePlenary, "ietf", TypePlenary),
			params:  FilterParams{Enabled: true, Show: []string{"ietf"}, HideTypes: []string{TypePlenary}},
			want:    false,
		},
		{
			name:    "shown type alone is enough",
			session: session(9, TypePlenary, "ietf", TypePlenary),
			params:  FilterParams{Enabled: true, ShowTypes: []string{TypePlenary}},
			want:    true,
		},
		{
			name:    "enabled with empty lists hides keyworded sessions",
			session: session(10, TypeRegular, "httpbis"),
			params:  FilterParams{Enabled: true},
			want:    false,
		},
		{
			name:    "enabled with empty lists keeps keywordless sessions",
			session: session(11, TypeRegular),
			params:  FilterParams{Enabled: true},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsVisible(&tt.session, tt.params)
			if got != tt.want {
				t.Errorf("IsVisible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasKeyword(t *testing.T) {
	s := session(1, TypeRegular, "httpbis", "wit")

	tests := []struct {
		keyword string
		want    bool
	}{
		{"httpbis", true},
		{"HTTPBIS", true},
		{"dnsop", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := s.HasKeyword(tt.keyword); got != tt.want {
			t.Errorf("HasKeyword(%q) = %v, want %v", tt.keyword, got, tt.want)
		}
	}
}

func TestToggleShowInvolution(t *testing.T) {
	var p FilterParams

	once := p.ToggleShow("HTTPBIS")
	if !once.Enabled {
		t.Error("toggle should enable filtering")
	}
	if !containsToken(once.Show, "httpbis") {
		t.Errorf("Show = %v, want normalized httpbis", once.Show)
	}

	twice := once.ToggleShow("httpbis")
	if !twice.Equal(p) {
		t.Errorf("double toggle = %+v, want original %+v", twice, p)
	}
	if twice.Enabled {
		t.Error("removing the last keyword should disable filtering")
	}
}

func TestToggleShowClearsHide(t *testing.T) {
	p := FilterParams{Enabled: true, Hide: []string{"httpbis", "dnsop"}}

	got := p.ToggleShow("httpbis")

	if containsToken(got.Hide, "httpbis") {
		t.Errorf("Hide = %v, should no longer contain httpbis", got.Hide)
	}
	if !containsToken(got.Show, "httpbis") {
		t.Errorf("Show = %v, should contain httpbis", got.Show)
	}
	if !containsToken(got.Hide, "dnsop") {
		t.Errorf("Hide = %v, should still contain dnsop", got.Hide)
	}
}

func TestToggleHideClearsShow(t *testing.T) {
	p := FilterParams{Enabled: true, Show: []string{"httpbis"}}

	got := p.ToggleHide("httpbis")

	if containsToken(got.Show, "httpbis") {
		t.Errorf("Show = %v, should no longer contain httpbis", got.Show)
	}
	if !containsToken(got.Hide, "httpbis") {
		t.Errorf("Hide = %v, should contain httpbis", got.Hide)
	}
}

func TestTogglesDoNotMutateReceiver(t *testing.T) {
	p := FilterParams{Enabled: true, Show: []string{"httpbis"}, Hide: []string{"dnsop"}}
	snapshot := p.Clone()

	_ = p.ToggleShow("quic")
	_ = p.ToggleHide("httpbis")
	_ = p.ToggleShowType(TypePlenary)
	_ = p.DeselectArea(Area{Groups: []Group{{Keyword: "httpbis"}}})

	if !p.Equal(snapshot) {
		t.Errorf("receiver mutated: got %+v, want %+v", p, snapshot)
	}
}

func TestSelectDeselectArea(t *testing.T) {
	area := Area{
		Label:   "ART",
		Keyword: "art",
		Groups: []Group{
			{Label: "httpbis", Keyword: "httpbis"},
			{Label: "core", Keyword: "core"},
		},
	}

	p := FilterParams{Enabled: true, Hide: []string{"core"}}

	selected := p.SelectArea(area)
	if !selected.AreaActive(area) {
		t.Errorf("area should be active after select, params %+v", selected)
	}
	if containsToken(selected.Hide, "core") {
		t.Errorf("Hide = %v, select should clear contained groups", selected.Hide)
	}

	deselected := selected.DeselectArea(area)
	if deselected.AreaActive(area) {
		t.Errorf("area should be inactive after deselect, params %+v", deselected)
	}
	if containsToken(deselected.Show, "httpbis") || containsToken(deselected.Show, "core") {
		t.Errorf("Show = %v, deselect should remove contained groups", deselected.Show)
	}
}

func TestAreaActive(t *testing.T) {
	area := Area{Keyword: "art", Groups: []Group{{Keyword: "httpbis"}, {Keyword: "core"}}}

	tests := []struct {
		name   string
		params FilterParams
		want   bool
	}{
		{"all shown", FilterParams{Show: []string{"httpbis", "core"}}, true},
		{"one missing", FilterParams{Show: []string{"httpbis"}}, false},
		{"one hidden", FilterParams{Show: []string{"httpbis", "core"}, Hide: []string{"core"}}, false},
		{"nothing selected", FilterParams{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.AreaActive(area); got != tt.want {
				t.Errorf("AreaActive() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("empty area never active", func(t *testing.T) {
		p := FilterParams{Show: []string{"anything"}}
		if p.AreaActive(Area{Keyword: "empty"}) {
			t.Error("area without groups reported active")
		}
	})
}

func TestEqualIgnoresOrder(t *testing.T) {
	a := FilterParams{Enabled: true, Show: []string{"httpbis", "core"}}
	b := FilterParams{Enabled: true, Show: []string{"core", "httpbis"}}

	if !a.Equal(b) {
		t.Errorf("%+v and %+v should compare equal as sets", a, b)
	}

	c := FilterParams{Enabled: true, Show: []string{"core"}}
	if a.Equal(c) {
		t.Errorf("%+v and %+v should not compare equal", a, c)
	}
}
