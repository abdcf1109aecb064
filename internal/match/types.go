// Package match implements Soul Match: topic selection, a simulated pairing
// with an anonymous study buddy, the chat that follows, and the archive of
// conversations the user chose to keep.
package match

import (
	"fmt"
	"slices"
	"time"
)

// Stage is the state of the pairing machine.
type Stage string

const (
	Selecting Stage = "Selecting"
	Matching  Stage = "Matching"
	Chatting  Stage = "Chatting"
	Minimized Stage = "Minimized"
)

// Sender identifies who wrote a message.
type Sender int

const (
	Self Sender = iota
	Counterpart
)

func (s Sender) String() string {
	switch s {
	case Self:
		return "self"
	case Counterpart:
		return "counterpart"
	default:
		return fmt.Sprintf("sender(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Sender) MarshalText() ([]byte, error) {
	switch s {
	case Self, Counterpart:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("unknown sender %d", int(s))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Sender) UnmarshalText(b []byte) error {
	switch string(b) {
	case "self":
		*s = Self
	case "counterpart":
		*s = Counterpart
	default:
		return fmt.Errorf("unknown sender %q", b)
	}
	return nil
}

// Identity is the anonymized persona a user is matched with.
type Identity struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func (i Identity) String() string {
	if i.Icon == "" {
		return i.Name
	}
	return i.Icon + " " + i.Name
}

// Message is one chat line.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is a point-in-time copy of the active pairing.
type Session struct {
	ID          string
	Stage       Stage
	Topics      []string
	Counterpart *Identity
	Messages    []Message
	// Ending is true while the end-of-chat disposition choice is open.
	Ending bool
}

func (s Session) clone() Session {
	out := s
	out.Topics = slices.Clone(s.Topics)
	out.Messages = slices.Clone(s.Messages)
	if s.Counterpart != nil {
		c := *s.Counterpart
		out.Counterpart = &c
	}
	return out
}

// KeptSession is the persisted summary of a conversation the user kept.
type KeptSession struct {
	ID                 string    `json:"id"`
	Counterpart        Identity  `json:"counterpart"`
	Topics             []string  `json:"topics"`
	LastMessagePreview string    `json:"lastMessagePreview"`
	KeptAt             time.Time `json:"keptAt"`
	MessageCount       int       `json:"messageCount"`
}

// NoMessagesPreview is the preview stored for a conversation kept before
// anything was said.
const NoMessagesPreview = "No messages yet"

// Level is the severity of a user-facing notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notifier receives fire-and-forget user feedback.
type Notifier interface {
	Notify(level Level, text string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, text string)

func (f NotifierFunc) Notify(level Level, text string) { f(level, text) }

// Navigator moves the user between screens.
type Navigator interface {
	// ShowKept opens the kept-conversations list.
	ShowKept()
	// OpenMatch returns to the Soul Match screen. A non-empty sessionID
	// resumes that kept conversation.
	OpenMatch(sessionID string)
}
