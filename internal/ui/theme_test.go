package ui

import (
	"errors"
	"testing"

	"github.com/five82/gifbox/internal/state"
)

func TestThemeLookups(t *testing.T) {
	if got := GetTheme("Kanagawa").Name; got != "Kanagawa" {
		t.Fatalf("GetTheme(Kanagawa).Name = %q", got)
	}
	if got := GetTheme("missing").Name; got != "Nightfox" {
		t.Fatalf("GetTheme fallback = %q, want Nightfox", got)
	}
}

func TestNextThemeCycles(t *testing.T) {
	names := ThemeNames()
	seen := map[string]bool{}
	current := names[0]
	for range names {
		seen[current] = true
		current = NextTheme(current)
	}
	if current != names[0] {
		t.Fatalf("cycle ended at %q, want %q", current, names[0])
	}
	if len(seen) != len(names) {
		t.Fatalf("visited %d themes, want %d", len(seen), len(names))
	}
	if got := NextTheme("unknown"); got != names[0] {
		t.Fatalf("NextTheme(unknown) = %q, want %q", got, names[0])
	}
}

func TestThemesDefineColors(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for label, color := range map[string]string{
			"Background":  th.Background,
			"Surface":     th.Surface,
			"FocusBg":     th.FocusBg,
			"SelectionBg": th.SelectionBg,
			"Text":        th.Text,
			"Star":        th.Star,
		} {
			if color == "" {
				t.Errorf("%s: %s is empty", name, label)
			}
		}
	}
}

func TestStatusLabel(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name string
		snap state.Snapshot
		want string
	}{
		{"loading", state.Snapshot{Status: state.StatusLoading}, "loading"},
		{"paging", state.Snapshot{Status: state.StatusReady, PageLoading: true}, "paging"},
		{"ready", state.Snapshot{Status: state.StatusReady}, "ready"},
		{"failed", state.Snapshot{Status: state.StatusReady, Err: boom, ConsecutiveFailures: 1}, "failed"},
		{"offline", state.Snapshot{Status: state.StatusReady, Err: boom, ConsecutiveFailures: 3}, "offline"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := statusLabel(tc.snap); got != tc.want {
				t.Fatalf("statusLabel = %q, want %q", got, tc.want)
			}
		})
	}
}
