package main

import (
	"testing"

	"github.com/matheus3301/studybuddy/internal/route"
)

func TestStartRoute(t *testing.T) {
	tests := []struct {
		name    string
		session string
		link    string
		want    *route.Route
		wantErr bool
	}{
		{name: "none"},
		{name: "session", session: "abc", want: &route.Route{Page: route.PageMatch, SessionID: "abc"}},
		{name: "link", link: "studybuddy://soul-match/kept", want: &route.Route{Page: route.PageKept}},
		{name: "bad link", link: "http://x", wantErr: true},
		{name: "both", session: "a", link: "studybuddy://soul-match/kept", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := startRoute(tt.session, tt.link)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
