// Package activity counts Soul Match events and keeps the totals in the
// key-value store.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/matheus3301/studybuddy/internal/bus"
	"github.com/matheus3301/studybuddy/internal/kv"
	"github.com/matheus3301/studybuddy/internal/match"
	"go.uber.org/zap"
)

// StatsKey holds the JSON encoded Stats.
const StatsKey = "activity-stats"

// Stats are lifetime counters for one profile.
type Stats struct {
	Started   int       `json:"started"`
	Matched   int       `json:"matched"`
	Sent      int       `json:"sent"`
	Received  int       `json:"received"`
	Kept      int       `json:"kept"`
	Discarded int       `json:"discarded"`
	Reported  int       `json:"reported"`
	Resumed   int       `json:"resumed"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Load reads the stored counters. Missing or unreadable data yields zero Stats.
func Load(store kv.Store) (Stats, error) {
	var s Stats
	data, ok, err := store.Get(StatsKey)
	if err != nil {
		return s, fmt.Errorf("read stats: %w", err)
	}
	if !ok {
		return s, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Stats{}, nil
	}
	return s, nil
}

// Recorder subscribes to "match." events on the bus and updates Stats.
type Recorder struct {
	store  kv.Store
	bus    *bus.Bus
	logger *zap.Logger
	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	stats Stats
}

// NewRecorder creates a recorder seeded from the stored counters.
func NewRecorder(store kv.Store, b *bus.Bus, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	s, err := Load(store)
	if err != nil {
		logger.Warn("starting activity stats from zero", zap.Error(err))
	}
	return &Recorder{store: store, bus: b, logger: logger, stats: s}
}

// Start begins consuming events until ctx is done or Stop is called.
func (r *Recorder) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})
	ch, unsub := r.bus.Subscribe("match.", 256)

	go func() {
		defer close(r.done)
		defer unsub()
		for {
			select {
			case evt := <-ch:
				r.Handle(evt)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the recorder and waits for its goroutine to exit.
func (r *Recorder) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}

// Stats returns the current counters.
func (r *Recorder) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Handle applies one event. Events that change no counter are ignored.
func (r *Recorder) Handle(evt bus.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch evt.Kind {
	case bus.KindStageChanged:
		change, ok := evt.Payload.(match.StageChange)
		if !ok || change.To != match.Matching {
			return
		}
		r.stats.Started++
	case bus.KindMatched:
		r.stats.Matched++
	case bus.KindMessageAppended:
		msg, ok := evt.Payload.(match.MessageAppended)
		if !ok {
			return
		}
		if msg.Message.Sender == match.Self {
			r.stats.Sent++
		} else {
			r.stats.Received++
		}
	case bus.KindKept:
		r.stats.Kept++
	case bus.KindDiscarded:
		info, ok := evt.Payload.(match.DiscardInfo)
		if !ok {
			return
		}
		r.stats.Discarded++
		if info.Reported {
			r.stats.Reported++
		}
	case bus.KindResumed:
		r.stats.Resumed++
	default:
		return
	}

	r.stats.UpdatedAt = evt.Timestamp
	if err := r.save(); err != nil {
		r.logger.Error("failed to save activity stats", zap.Error(err), zap.String("kind", evt.Kind))
	}
}

func (r *Recorder) save() error {
	data, err := json.Marshal(r.stats)
	if err != nil {
		return err
	}
	return r.store.Set(StatsKey, data)
}
