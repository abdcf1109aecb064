package bus

import "time"

// Event kinds published by the Soul Match machine and archive.
const (
	KindStageChanged    = "match.stage_changed"
	KindTopicsChanged   = "match.topics_changed"
	KindMatched         = "match.matched"
	KindMessageAppended = "match.message_appended"
	KindEndRequested    = "match.end_requested"
	KindKept            = "match.kept"
	KindDiscarded       = "match.discarded"
	KindResumed         = "match.resumed"
	KindNotified        = "notify.posted"
	KindKeptDeleted     = "kept.deleted"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
