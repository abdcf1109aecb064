package tui

import (
	"strings"

	"github.com/matheus3301/studybuddy/internal/route"
)

// Command represents a parsed command.
type Command struct {
	Name string
	Args string
}

// ParseCommand parses a command string (without the leading ':').
func ParseCommand(input string) Command {
	input = strings.TrimSpace(input)
	parts := strings.SplitN(input, " ", 2)
	cmd := Command{Name: strings.ToLower(parts[0])}
	if len(parts) > 1 {
		cmd.Args = strings.TrimSpace(parts[1])
	}
	return cmd
}

// ParseTarget reads the argument of :open, either a studybuddy:// link or
// a bare kept-session id.
func ParseTarget(arg string) (route.Route, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return route.Route{}, route.ErrInvalid
	}
	if strings.Contains(arg, "://") {
		return route.Parse(arg)
	}
	return route.Match(arg), nil
}
