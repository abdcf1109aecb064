package route

import (
	"errors"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		route Route
		want  string
	}{
		{Match("abc-123"), "studybuddy://soul-match?session=abc-123"},
		{Match(""), "studybuddy://soul-match"},
		{Kept(), "studybuddy://soul-match/kept"},
	}
	for _, tt := range tests {
		if got := tt.route.Format(); got != tt.want {
			t.Errorf("Format(%+v) = %q, want %q", tt.route, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, r := range []Route{Match("9f1c"), Match("a b&c"), Match(""), Kept()} {
		got, err := Parse(r.Format())
		if err != nil {
			t.Fatalf("Parse(%q): %v", r.Format(), err)
		}
		if got != r {
			t.Errorf("round trip = %+v, want %+v", got, r)
		}
	}
}

func TestParseRejects(t *testing.T) {
	for _, link := range []string{
		"https://soul-match?session=1",
		"studybuddy://elsewhere?session=1",
		"studybuddy://soul-match/settings",
		"::not a url",
	} {
		if _, err := Parse(link); !errors.Is(err, ErrInvalid) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalid", link, err)
		}
	}
}

func TestQR(t *testing.T) {
	out, err := QR(Match("abc").Format(), "  ")
	if err != nil {
		t.Fatalf("QR: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) < 10 {
		t.Fatalf("got %d lines, want a full code", len(lines))
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "  ") {
			t.Fatalf("line %q missing indent", l)
		}
	}
}
