// Package route parses and formats studybuddy:// links that reopen the app
// on a specific screen.
package route

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	Scheme = "studybuddy"
	host   = "soul-match"
)

// Page identifies a screen a link can open.
type Page string

const (
	PageMatch Page = "match"
	PageKept  Page = "kept"
)

var ErrInvalid = errors.New("invalid studybuddy link")

// Route is a parsed link. SessionID is set only for PageMatch links that
// resume a kept conversation.
type Route struct {
	Page      Page
	SessionID string
}

// Match returns a route that resumes the kept session id.
func Match(id string) Route { return Route{Page: PageMatch, SessionID: id} }

// Kept returns a route to the kept-conversations list.
func Kept() Route { return Route{Page: PageKept} }

// Format renders r as a link.
func (r Route) Format() string {
	u := url.URL{Scheme: Scheme, Host: host}
	switch r.Page {
	case PageKept:
		u.Path = "/kept"
	default:
		if r.SessionID != "" {
			u.RawQuery = url.Values{"session": {r.SessionID}}.Encode()
		}
	}
	return u.String()
}

func (r Route) String() string { return r.Format() }

// Parse reads a link produced by Format.
func Parse(link string) (Route, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return Route{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if u.Scheme != Scheme {
		return Route{}, fmt.Errorf("%w: scheme %q", ErrInvalid, u.Scheme)
	}
	if u.Host != host {
		return Route{}, fmt.Errorf("%w: unknown destination %q", ErrInvalid, u.Host)
	}
	switch strings.Trim(u.Path, "/") {
	case "":
		return Route{Page: PageMatch, SessionID: u.Query().Get("session")}, nil
	case "kept":
		return Kept(), nil
	default:
		return Route{}, fmt.Errorf("%w: unknown page %q", ErrInvalid, u.Path)
	}
}
