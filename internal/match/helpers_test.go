package match

import (
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/matheus3301/studybuddy/internal/kv"
)

// manualClock is a Scheduler whose timers only fire on Advance.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, seq: c.seq, f: f}
	c.seq++
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward by d, firing due timers in order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	for {
		var due []*manualTimer
		for _, t := range c.timers {
			if !t.fired && !t.stopped && t.at <= target {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			break
		}
		sort.Slice(due, func(i, j int) bool {
			if due[i].at != due[j].at {
				return due[i].at < due[j].at
			}
			return due[i].seq < due[j].seq
		})
		next := due[0]
		next.fired = true
		c.now = next.at
		c.mu.Unlock()
		next.f()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// Live counts timers that are neither fired nor stopped.
func (c *manualClock) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

// sequence returns a Chooser that yields picks in order, wrapping around,
// each reduced modulo n.
func sequence(picks ...int) Chooser {
	var mu sync.Mutex
	i := 0
	return func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		p := picks[i%len(picks)]
		i++
		return p % n
	}
}

type note struct {
	Level Level
	Text  string
}

// recorder collects notifications.
type recorder struct {
	mu    sync.Mutex
	items []note
}

func (r *recorder) Notify(level Level, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, note{level, text})
}

func (r *recorder) all() []note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]note(nil), r.items...)
}

func (r *recorder) count(level Level) int {
	n := 0
	for _, it := range r.all() {
		if it.Level == level {
			n++
		}
	}
	return n
}

type fixture struct {
	clock    *manualClock
	store    *kv.Memory
	archive  *Archive
	notes    *recorder
	machine  *Machine
	ticks    time.Time
	tickLock sync.Mutex
}

const (
	testMatchDelay   = 3000 * time.Millisecond
	testOpeningDelay = 1000 * time.Millisecond
	testTypingDelay  = 2000 * time.Millisecond
)

func newFixture(t *testing.T, choose Chooser) *fixture {
	t.Helper()
	f := &fixture{
		clock: &manualClock{},
		store: kv.NewMemory(),
		notes: &recorder{},
		ticks: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
	}
	f.archive = NewArchive(f.store, nil, nil)
	ids := 0
	f.machine = NewMachine(f.archive, nil, nil, Options{
		MatchDelay:   testMatchDelay,
		OpeningDelay: testOpeningDelay,
		TypingDelay:  testTypingDelay,
		Choose:       choose,
		Scheduler:    f.clock,
		Notifier:     f.notes,
		Now:          f.now,
		NewID: func() string {
			ids++
			return fmt.Sprintf("id-%d", ids)
		},
	})
	t.Cleanup(f.machine.Close)
	return f
}

// now returns a strictly increasing, sub-second precise timestamp.
func (f *fixture) now() time.Time {
	f.tickLock.Lock()
	defer f.tickLock.Unlock()
	f.ticks = f.ticks.Add(1234567 * time.Nanosecond)
	return f.ticks
}

// chatting drives a fresh machine to Chatting with the opening message delivered.
func (f *fixture) chatting(t *testing.T, topics ...string) Session {
	t.Helper()
	if len(topics) == 0 {
		topics = []string{"Music"}
	}
	if err := f.machine.SetTopics(topics); err != nil {
		t.Fatal(err)
	}
	if err := f.machine.Start(); err != nil {
		t.Fatal(err)
	}
	f.clock.Advance(testMatchDelay + testOpeningDelay)
	s := f.machine.Snapshot()
	if s.Stage != Chatting {
		t.Fatalf("stage = %s, want Chatting", s.Stage)
	}
	return s
}

func countBySender(msgs []Message, who Sender) int {
	n := 0
	for _, m := range msgs {
		if m.Sender == who {
			n++
		}
	}
	return n
}
