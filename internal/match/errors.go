package match

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoTopics      = errors.New("no topics selected")
	ErrNotFound      = errors.New("kept session not found")
	ErrNoCounterpart = errors.New("session has no counterpart yet")
	ErrClosed        = errors.New("match machine closed")
)

// TransitionError is returned when an operation is not valid in the current stage.
type TransitionError struct {
	Op   string
	From Stage
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: not allowed while %s", e.Op, strings.ToLower(string(e.From)))
}
