package activity

import (
	"context"
	"testing"
	"time"

	"github.com/matheus3301/studybuddy/internal/bus"
	"github.com/matheus3301/studybuddy/internal/kv"
	"github.com/matheus3301/studybuddy/internal/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func event(kind string, payload any) bus.Event {
	return bus.Event{Kind: kind, Timestamp: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC), Payload: payload}
}

func TestHandleCounts(t *testing.T) {
	store := kv.NewMemory()
	r := NewRecorder(store, nil, nil)

	for _, evt := range []bus.Event{
		event(bus.KindStageChanged, match.StageChange{From: match.Selecting, To: match.Matching}),
		event(bus.KindStageChanged, match.StageChange{From: match.Matching, To: match.Chatting}),
		event(bus.KindMatched, match.Identity{Name: "Quiet Owl"}),
		event(bus.KindMessageAppended, match.MessageAppended{Message: match.Message{Sender: match.Counterpart}}),
		event(bus.KindMessageAppended, match.MessageAppended{Message: match.Message{Sender: match.Self}}),
		event(bus.KindMessageAppended, match.MessageAppended{Message: match.Message{Sender: match.Counterpart}}),
		event(bus.KindKept, match.KeptSession{}),
		event(bus.KindResumed, "id"),
		event(bus.KindDiscarded, match.DiscardInfo{Reported: true}),
		event(bus.KindTopicsChanged, []string{"Music"}),
	} {
		r.Handle(evt)
	}

	want := Stats{
		Started:   1,
		Matched:   1,
		Sent:      1,
		Received:  2,
		Kept:      1,
		Discarded: 1,
		Reported:  1,
		Resumed:   1,
		UpdatedAt: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, want, r.Stats())

	stored, err := Load(store)
	require.NoError(t, err)
	assert.Equal(t, want, stored)
}

func TestRecorderSeedsFromStore(t *testing.T) {
	store := kv.NewMemory()
	r := NewRecorder(store, nil, nil)
	r.Handle(event(bus.KindKept, nil))

	again := NewRecorder(store, nil, nil)
	again.Handle(event(bus.KindKept, nil))
	assert.Equal(t, 2, again.Stats().Kept)
}

func TestLoadCorrupt(t *testing.T) {
	store := kv.NewMemory()
	require.NoError(t, store.Set(StatsKey, []byte("nope")))

	s, err := Load(store)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, s)
}

func TestRecorderFollowsMachine(t *testing.T) {
	b := bus.New()
	store := kv.NewMemory()
	r := NewRecorder(store, b, nil)
	r.Start(context.Background())
	defer r.Stop()

	m := match.NewMachine(match.NewArchive(store, b, nil), b, nil, match.Options{
		MatchDelay:   time.Millisecond,
		OpeningDelay: time.Millisecond,
		TypingDelay:  time.Millisecond,
	})
	defer m.Close()

	require.NoError(t, m.SetTopics([]string{"Music"}))
	require.NoError(t, m.Start())
	require.Eventually(t, func() bool { return r.Stats().Received == 1 }, 2*time.Second, time.Millisecond)

	_, err := m.Keep()
	require.NoError(t, err)
	require.Eventually(t, func() bool { return r.Stats().Kept == 1 }, 2*time.Second, time.Millisecond)

	s := r.Stats()
	assert.Equal(t, 1, s.Started)
	assert.Equal(t, 1, s.Matched)
}
