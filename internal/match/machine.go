package match

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/studybuddy/internal/bus"
	"go.uber.org/zap"
)

// Options configures a Machine. Zero fields, including non-positive delays,
// fall back to defaults.
type Options struct {
	MatchDelay   time.Duration
	OpeningDelay time.Duration
	TypingDelay  time.Duration

	Roster    *Roster
	Choose    Chooser
	Scheduler Scheduler
	Notifier  Notifier
	Now       func() time.Time
	NewID     func() string
}

// DefaultOptions returns the delays and collaborators used by the app.
func DefaultOptions() Options {
	return Options{
		MatchDelay:   3 * time.Second,
		OpeningDelay: time.Second,
		TypingDelay:  2 * time.Second,
	}
}

// Machine drives one Soul Match session at a time.
//
// Timers fire on their own goroutines, so all state lives behind mu. Every
// scheduled callback remembers the generation it was created in; a reset
// bumps the generation and stops pending timers, so a late callback from an
// abandoned session never touches the next one.
type Machine struct {
	mu         sync.Mutex
	opts       Options
	archive    *Archive
	bus        *bus.Bus
	logger     *zap.Logger
	navigator  Navigator
	state      Session
	generation uint64
	pending    map[uint64]Timer
	nextTimer  uint64
	closed     bool
}

// NewMachine creates a machine in the Selecting stage.
func NewMachine(archive *Archive, b *bus.Bus, logger *zap.Logger, opts Options) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultOptions()
	if opts.MatchDelay <= 0 {
		opts.MatchDelay = defaults.MatchDelay
	}
	if opts.OpeningDelay <= 0 {
		opts.OpeningDelay = defaults.OpeningDelay
	}
	if opts.TypingDelay <= 0 {
		opts.TypingDelay = defaults.TypingDelay
	}
	if opts.Roster == nil {
		opts.Roster = DefaultRoster()
	}
	if opts.Choose == nil {
		opts.Choose = RandomChooser
	}
	if opts.Scheduler == nil {
		opts.Scheduler = WallClock
	}
	if opts.Notifier == nil {
		opts.Notifier = NotifierFunc(func(Level, string) {})
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Machine{
		opts:    opts,
		archive: archive,
		bus:     b,
		logger:  logger,
		state:   Session{Stage: Selecting},
		pending: make(map[uint64]Timer),
	}
}

// SetNavigator attaches the screen router. It may be called once the UI exists.
func (m *Machine) SetNavigator(n Navigator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.navigator = n
}

// Snapshot returns a copy of the current session.
func (m *Machine) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// Stage returns the current stage.
func (m *Machine) Stage() Stage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Stage
}

// ToggleTopic adds label to the topic set, or removes it if already present.
// Blank labels are ignored.
func (m *Machine) ToggleTopic(label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.require("toggle topic", Selecting); err != nil {
		return err
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}
	if i := slices.Index(m.state.Topics, label); i >= 0 {
		m.state.Topics = slices.Delete(m.state.Topics, i, i+1)
	} else {
		m.state.Topics = append(m.state.Topics, label)
	}
	m.publish(bus.KindTopicsChanged, slices.Clone(m.state.Topics))
	return nil
}

// SetTopics replaces the topic set. Duplicates and blank labels are dropped.
func (m *Machine) SetTopics(labels []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.require("set topics", Selecting); err != nil {
		return err
	}
	topics := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l != "" && !slices.Contains(topics, l) {
			topics = append(topics, l)
		}
	}
	m.state.Topics = topics
	m.publish(bus.KindTopicsChanged, slices.Clone(topics))
	return nil
}

// Start begins matching on the selected topics. With no topics selected it
// posts one error notification and returns ErrNoTopics without a transition.
func (m *Machine) Start() error {
	var out notices
	defer out.deliver(m.opts.Notifier)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.require("start", Selecting); err != nil {
		return err
	}
	if len(m.state.Topics) == 0 {
		out.post(LevelError, "Pick at least one topic to start matching.")
		return ErrNoTopics
	}

	m.state.ID = m.opts.NewID()
	m.state.Counterpart = nil
	m.state.Messages = nil
	m.state.Ending = false
	m.transition(Matching)
	m.logger.Info("matching started", zap.String("session_id", m.state.ID), zap.Strings("topics", m.state.Topics))

	m.schedule(m.opts.MatchDelay, m.matched)
	return nil
}

// CancelMatching abandons a pending match and returns to topic selection,
// keeping the chosen topics.
func (m *Machine) CancelMatching() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.require("cancel matching", Matching); err != nil {
		return err
	}
	topics := m.state.Topics
	m.reset()
	m.state.Topics = topics
	return nil
}

func (m *Machine) matched(out *notices) {
	if m.state.Stage != Matching {
		return
	}
	ids := m.opts.Roster.Identities
	who := ids[m.opts.Choose(len(ids))]
	m.state.Counterpart = &who
	m.transition(Chatting)
	m.publish(bus.KindMatched, who)
	m.logger.Info("matched", zap.String("session_id", m.state.ID), zap.String("counterpart", who.Name))
	out.post(LevelInfo, "You're matched with "+who.String()+"!")

	m.schedule(m.opts.OpeningDelay, func(*notices) {
		m.appendMessage(Counterpart, m.opts.Roster.greeting(m.state.Topics))
	})
}

// Send appends the user's message and schedules one simulated reply.
// Blank text is ignored.
func (m *Machine) Send(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if err := m.require("send", Chatting); err != nil {
		return err
	}
	m.appendMessage(Self, text)

	// Each send gets its own reply, even when earlier ones are still pending.
	m.schedule(m.opts.TypingDelay, func(*notices) {
		responses := m.opts.Roster.Responses
		m.appendMessage(Counterpart, responses[m.opts.Choose(len(responses))])
	})
	return nil
}

// Minimize keeps the conversation for later without ending it: the session is
// persisted like Keep, then hidden until Restore.
func (m *Machine) Minimize() error {
	var out notices
	defer out.deliver(m.opts.Notifier)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.require("minimize", Chatting); err != nil {
		return err
	}
	rec, err := m.keep()
	if err != nil {
		out.post(LevelError, "Couldn't keep this chat: "+err.Error())
		return err
	}
	m.state.Ending = false
	m.transition(Minimized)
	out.post(LevelSuccess, "Chat with "+rec.Counterpart.Name+" kept for later.")
	return nil
}

// Restore brings a minimized chat back into view.
func (m *Machine) Restore() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.require("restore", Minimized); err != nil {
		return err
	}
	m.transition(Chatting)
	return nil
}

// RequestEnd opens the keep-or-discard choice.
func (m *Machine) RequestEnd() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.require("end chat", Chatting, Minimized); err != nil {
		return err
	}
	m.state.Ending = true
	m.publish(bus.KindEndRequested, m.state.ID)
	return nil
}

// CancelEnd closes the keep-or-discard choice and carries on chatting.
func (m *Machine) CancelEnd() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.require("cancel end", Chatting, Minimized); err != nil {
		return err
	}
	m.state.Ending = false
	m.publish(bus.KindEndRequested, "")
	return nil
}

// Keep persists the conversation and returns to topic selection. On a
// persistence failure the session is left untouched.
func (m *Machine) Keep() (KeptSession, error) {
	var out notices
	defer out.deliver(m.opts.Notifier)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.require("keep", Chatting, Minimized); err != nil {
		return KeptSession{}, err
	}
	rec, err := m.keep()
	if err != nil {
		out.post(LevelError, "Couldn't keep this chat: "+err.Error())
		return KeptSession{}, err
	}
	m.publish(bus.KindKept, rec)
	out.post(LevelSuccess, "Chat with "+rec.Counterpart.Name+" kept. Find it under Kept chats.")
	m.reset()
	return rec, nil
}

// DiscardInfo is the payload of bus.KindDiscarded.
type DiscardInfo struct {
	SessionID string
	Reported  bool
}

// Discard ends the conversation without persisting anything. report flags the
// counterpart; it is logged and acknowledged but changes nothing else.
func (m *Machine) Discard(report bool) error {
	var out notices
	defer out.deliver(m.opts.Notifier)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.require("discard", Chatting, Minimized); err != nil {
		return err
	}
	fields := []zap.Field{zap.String("session_id", m.state.ID), zap.Bool("reported", report)}
	if m.state.Counterpart != nil {
		fields = append(fields, zap.String("counterpart", m.state.Counterpart.Name))
	}
	m.logger.Info("chat discarded", fields...)
	m.publish(bus.KindDiscarded, DiscardInfo{SessionID: m.state.ID, Reported: report})

	if report {
		out.post(LevelSuccess, "Chat ended and reported. Thanks for keeping Soul Match kind.")
	} else {
		out.post(LevelSuccess, "Chat ended.")
	}
	m.reset()
	return nil
}

// Resume reopens a kept conversation by id, skipping selection and matching.
// An unknown id leaves the machine untouched, posts an info notification and
// returns an error wrapping ErrNotFound.
func (m *Machine) Resume(id string) error {
	var out notices
	defer out.deliver(m.opts.Notifier)
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	rec, err := m.archive.Get(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			out.post(LevelInfo, "That chat is no longer in your kept list.")
		} else {
			out.post(LevelError, "Couldn't open that chat: "+err.Error())
		}
		return err
	}
	transcript, err := m.archive.Transcript(id)
	if err != nil {
		out.post(LevelError, "Couldn't load that chat: "+err.Error())
		return err
	}

	m.reset()
	who := rec.Counterpart
	m.state = Session{
		ID:          rec.ID,
		Stage:       m.state.Stage,
		Topics:      slices.Clone(rec.Topics),
		Counterpart: &who,
		Messages:    transcript,
	}
	m.transition(Chatting)
	m.publish(bus.KindResumed, rec.ID)
	m.logger.Info("kept session resumed", zap.String("session_id", rec.ID), zap.Int("messages", len(transcript)))
	return nil
}

// ShowKept asks the navigator for the kept-conversations list.
func (m *Machine) ShowKept() {
	m.mu.Lock()
	nav := m.navigator
	m.mu.Unlock()
	if nav != nil {
		nav.ShowKept()
	}
}

// OpenKept asks the navigator to come back to Soul Match and resume id.
func (m *Machine) OpenKept(id string) {
	m.mu.Lock()
	nav := m.navigator
	m.mu.Unlock()
	if nav != nil {
		nav.OpenMatch(id)
	}
}

// Close cancels pending timers. Further operations return ErrClosed.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.generation++
	m.stopTimers()
}

// keep writes the current session through the archive.
func (m *Machine) keep() (KeptSession, error) {
	if m.state.Counterpart == nil {
		return KeptSession{}, ErrNoCounterpart
	}
	preview := NoMessagesPreview
	if n := len(m.state.Messages); n > 0 {
		preview = m.state.Messages[n-1].Text
	}
	rec := KeptSession{
		ID:                 m.state.ID,
		Counterpart:        *m.state.Counterpart,
		Topics:             slices.Clone(m.state.Topics),
		LastMessagePreview: preview,
		KeptAt:             m.opts.Now(),
		MessageCount:       len(m.state.Messages),
	}
	if err := m.archive.Put(rec, slices.Clone(m.state.Messages)); err != nil {
		m.logger.Error("failed to keep session", zap.String("session_id", rec.ID), zap.Error(err))
		return KeptSession{}, err
	}
	m.logger.Info("session kept", zap.String("session_id", rec.ID), zap.Int("messages", rec.MessageCount))
	return rec, nil
}

func (m *Machine) appendMessage(from Sender, text string) {
	msg := Message{
		ID:        m.opts.NewID(),
		Text:      text,
		Sender:    from,
		Timestamp: m.opts.Now(),
	}
	m.state.Messages = append(m.state.Messages, msg)
	m.publish(bus.KindMessageAppended, MessageAppended{SessionID: m.state.ID, Message: msg})
}

// MessageAppended is the payload of bus.KindMessageAppended.
type MessageAppended struct {
	SessionID string
	Message   Message
}

// reset clears the session and invalidates every pending callback.
func (m *Machine) reset() {
	m.generation++
	m.stopTimers()
	if m.state.Stage != Selecting {
		m.transition(Selecting)
	}
	m.state = Session{Stage: Selecting}
}

func (m *Machine) stopTimers() {
	for id, t := range m.pending {
		t.Stop()
		delete(m.pending, id)
	}
}

// schedule runs fn under the lock after d, unless the session was reset or
// the machine closed in the meantime.
func (m *Machine) schedule(d time.Duration, fn func(out *notices)) {
	gen := m.generation
	id := m.nextTimer
	m.nextTimer++
	m.pending[id] = m.opts.Scheduler.AfterFunc(d, func() {
		var out notices
		defer out.deliver(m.opts.Notifier)
		m.mu.Lock()
		defer m.mu.Unlock()

		delete(m.pending, id)
		if m.closed || gen != m.generation {
			return
		}
		fn(&out)
	})
}

func (m *Machine) require(op string, stages ...Stage) error {
	if m.closed {
		return ErrClosed
	}
	if !slices.Contains(stages, m.state.Stage) {
		return &TransitionError{Op: op, From: m.state.Stage}
	}
	return nil
}

func (m *Machine) transition(to Stage) {
	from := m.state.Stage
	if !canTransition(from, to) {
		// Callers check stages first; reaching this is a programming error.
		panic(fmt.Sprintf("match: invalid transition from %s to %s", from, to))
	}
	m.state.Stage = to
	m.publish(bus.KindStageChanged, StageChange{SessionID: m.state.ID, From: from, To: to})
}

func (m *Machine) publish(kind string, payload any) {
	m.bus.Publish(bus.Event{Kind: kind, Timestamp: time.Now(), Payload: payload})
}

// notices buffers notifications until the machine lock is released.
type notices []notice

type notice struct {
	level Level
	text  string
}

func (n *notices) post(level Level, text string) {
	*n = append(*n, notice{level, text})
}

func (n *notices) deliver(to Notifier) {
	for _, x := range *n {
		to.Notify(x.level, x.text)
	}
}
