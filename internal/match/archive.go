package match

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/matheus3301/studybuddy/internal/bus"
	"github.com/matheus3301/studybuddy/internal/kv"
	"go.uber.org/zap"
)

const (
	// KeptSessionsKey holds the JSON array of every KeptSession.
	KeptSessionsKey  = "kept-sessions"
	transcriptPrefix = "session-messages-"
)

// TranscriptKey returns the key holding the messages of a kept session.
func TranscriptKey(id string) string {
	return transcriptPrefix + id
}

// Archive reads and writes kept conversations through a kv.Store.
type Archive struct {
	mu     sync.Mutex
	store  kv.Store
	bus    *bus.Bus
	logger *zap.Logger
}

// NewArchive creates an archive over store. b and logger may be nil.
func NewArchive(store kv.Store, b *bus.Bus, logger *zap.Logger) *Archive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archive{store: store, bus: b, logger: logger}
}

// List returns every kept session, most recently kept first.
func (a *Archive) List() ([]KeptSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	kept, err := a.load()
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(kept, func(x, y KeptSession) int {
		return cmp.Compare(y.KeptAt.UnixNano(), x.KeptAt.UnixNano())
	})
	return kept, nil
}

// Get returns the kept session with the given id or ErrNotFound.
func (a *Archive) Get(id string) (KeptSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	kept, err := a.load()
	if err != nil {
		return KeptSession{}, err
	}
	i := slices.IndexFunc(kept, func(k KeptSession) bool { return k.ID == id })
	if i < 0 {
		return KeptSession{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return kept[i], nil
}

// Put stores rec and its transcript. An existing record with the same id is
// replaced in place.
func (a *Archive) Put(rec KeptSession, transcript []Message) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if transcript == nil {
		transcript = []Message{}
	}
	data, err := json.Marshal(transcript)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	if err := a.store.Set(TranscriptKey(rec.ID), data); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}

	kept, err := a.load()
	if err != nil {
		return err
	}
	if i := slices.IndexFunc(kept, func(k KeptSession) bool { return k.ID == rec.ID }); i >= 0 {
		kept[i] = rec
	} else {
		kept = append(kept, rec)
	}
	return a.save(kept)
}

// Transcript returns the messages saved with a kept session, in order.
// A missing or unreadable transcript yields an empty slice.
func (a *Archive) Transcript(id string) ([]Message, error) {
	data, ok, err := a.store.Get(TranscriptKey(id))
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	if !ok {
		return []Message{}, nil
	}
	var msgs []Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		a.logger.Warn("discarding unreadable transcript", zap.String("session_id", id), zap.Error(err))
		return []Message{}, nil
	}
	if msgs == nil {
		msgs = []Message{}
	}
	return msgs, nil
}

// Delete removes exactly the kept session with the given id and its transcript.
func (a *Archive) Delete(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	kept, err := a.load()
	if err != nil {
		return err
	}
	i := slices.IndexFunc(kept, func(k KeptSession) bool { return k.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	kept = slices.Delete(kept, i, i+1)
	if err := a.save(kept); err != nil {
		return err
	}
	if err := a.store.Delete(TranscriptKey(id)); err != nil {
		a.logger.Warn("failed to delete transcript", zap.String("session_id", id), zap.Error(err))
	}

	a.logger.Info("kept session deleted", zap.String("session_id", id))
	a.bus.Publish(bus.Event{
		Kind:      bus.KindKeptDeleted,
		Timestamp: time.Now(),
		Payload:   id,
	})
	return nil
}

// load reads the collection. Corrupt data is logged and treated as empty so a
// bad write never locks the user out of the list.
func (a *Archive) load() ([]KeptSession, error) {
	data, ok, err := a.store.Get(KeptSessionsKey)
	if err != nil {
		return nil, fmt.Errorf("read kept sessions: %w", err)
	}
	if !ok || len(data) == 0 {
		return []KeptSession{}, nil
	}
	var kept []KeptSession
	if err := json.Unmarshal(data, &kept); err != nil {
		a.logger.Warn("kept sessions unreadable, starting empty", zap.Error(err))
		return []KeptSession{}, nil
	}
	if kept == nil {
		kept = []KeptSession{}
	}
	return kept, nil
}

func (a *Archive) save(kept []KeptSession) error {
	data, err := json.Marshal(kept)
	if err != nil {
		return fmt.Errorf("encode kept sessions: %w", err)
	}
	if err := a.store.Set(KeptSessionsKey, data); err != nil {
		return fmt.Errorf("write kept sessions: %w", err)
	}
	return nil
}
