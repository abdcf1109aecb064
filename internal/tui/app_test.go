package tui

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/matheus3301/studybuddy/internal/bus"
	"github.com/matheus3301/studybuddy/internal/kv"
	"github.com/matheus3301/studybuddy/internal/match"
	"github.com/matheus3301/studybuddy/internal/tui/ui"
)

func newTestApp(t *testing.T) (*App, *match.Machine, *match.Archive) {
	t.Helper()
	b := bus.New()
	archive := match.NewArchive(kv.NewMemory(), b, nil)
	flash := ui.NewFlashModel()
	m := match.NewMachine(archive, b, nil, match.Options{
		MatchDelay:   time.Hour,
		OpeningDelay: time.Hour,
		TypingDelay:  time.Hour,
		Notifier:     flash,
	})
	t.Cleanup(m.Close)

	a := NewApp(m, archive, b, flash, nil, "main")
	t.Cleanup(a.cancel)
	a.vm.LoadSession()
	a.showMatch()
	return a, m, archive
}

func (a *App) refresh() {
	a.vm.LoadSession()
	_ = a.vm.LoadKept()
	a.render()
}

func TestStagePages(t *testing.T) {
	tests := map[match.Stage]string{
		match.Selecting: pageTopics,
		match.Matching:  pageMatching,
		match.Chatting:  pageChat,
		match.Minimized: pageMinimized,
	}
	for stage, page := range tests {
		if got := stagePage(stage); got != page {
			t.Errorf("stagePage(%s) = %q, want %q", stage, got, page)
		}
		if !isStagePage(page) {
			t.Errorf("isStagePage(%q) = false", page)
		}
	}
	if isStagePage(pageKept) {
		t.Error("kept list is not a stage page")
	}
}

func TestPageFollowsMachine(t *testing.T) {
	a, m, _ := newTestApp(t)
	if got := a.pages.Current(); got != pageTopics {
		t.Fatalf("initial page = %q", got)
	}

	if err := m.SetTopics([]string{"Music"}); err != nil {
		t.Fatal(err)
	}
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	a.refresh()
	if got := a.pages.Current(); got != pageMatching {
		t.Fatalf("after start page = %q", got)
	}

	if err := m.CancelMatching(); err != nil {
		t.Fatal(err)
	}
	a.refresh()
	if got := a.pages.Stack(); len(got) != 1 || got[0] != pageTopics {
		t.Fatalf("after cancel stack = %v", got)
	}
}

func TestEndDialogFlow(t *testing.T) {
	a, m, archive := newTestApp(t)
	rec := match.KeptSession{
		ID:                 "kept-1",
		Counterpart:        match.Identity{Name: "Quiet Owl", Icon: "🦉"},
		Topics:             []string{"Books"},
		LastMessagePreview: "bye",
		KeptAt:             time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
		MessageCount:       1,
	}
	if err := archive.Put(rec, []match.Message{{ID: "m1", Text: "bye", Sender: match.Self}}); err != nil {
		t.Fatal(err)
	}

	if err := m.Resume("kept-1"); err != nil {
		t.Fatal(err)
	}
	a.refresh()
	if got := a.pages.Current(); got != pageChat {
		t.Fatalf("after resume page = %q", got)
	}

	if err := m.RequestEnd(); err != nil {
		t.Fatal(err)
	}
	a.refresh()
	if got := a.pages.Current(); got != pageEnd {
		t.Fatalf("after end request page = %q", got)
	}

	if err := m.CancelEnd(); err != nil {
		t.Fatal(err)
	}
	a.refresh()
	if got := a.pages.Current(); got != pageChat {
		t.Fatalf("after cancel page = %q", got)
	}

	if err := m.RequestEnd(); err != nil {
		t.Fatal(err)
	}
	a.refresh()
	if _, err := m.Keep(); err != nil {
		t.Fatal(err)
	}
	a.refresh()
	if got := a.pages.Stack(); len(got) != 1 || got[0] != pageTopics {
		t.Fatalf("after keep stack = %v", got)
	}
	if a.vm.KeptTotal() != 1 {
		t.Errorf("KeptTotal = %d, want 1", a.vm.KeptTotal())
	}
}

func TestPushedPagesSurviveStageChange(t *testing.T) {
	a, m, _ := newTestApp(t)
	a.pages.Push(pageKept)

	if err := m.SetTopics([]string{"Art"}); err != nil {
		t.Fatal(err)
	}
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	a.refresh()
	if got := a.pages.Current(); got != pageKept {
		t.Fatalf("kept list replaced by %q", got)
	}

	a.back()
	if got := a.pages.Current(); got != pageMatching {
		t.Errorf("after back page = %q, want matching", got)
	}
}

func TestQueuedSendsKeepKeyPressOrder(t *testing.T) {
	a, m, archive := newTestApp(t)
	rec := match.KeptSession{ID: "kept-1", Counterpart: match.Identity{Name: "Quiet Owl"}, Topics: []string{"Books"}}
	if err := archive.Put(rec, nil); err != nil {
		t.Fatal(err)
	}
	if err := m.Resume("kept-1"); err != nil {
		t.Fatal(err)
	}

	var want []string
	for i := range 20 {
		text := fmt.Sprintf("msg %d", i)
		want = append(want, text)
		a.do(func() error { return m.Send(text) })
	}
	done := make(chan struct{})
	a.do(func() error { close(done); return nil })

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("queued operations did not run")
	}

	var got []string
	for _, msg := range m.Snapshot().Messages {
		if msg.Sender == match.Self {
			got = append(got, msg.Text)
		}
	}
	if !slices.Equal(got, want) {
		t.Errorf("sent order = %v, want %v", got, want)
	}
}

func TestEventLoopRedrawsAfterKeptReload(t *testing.T) {
	a, _, archive := newTestApp(t)
	draws := make(chan struct{}, 16)
	a.redraw = func() {
		select {
		case draws <- struct{}{}:
		default:
		}
	}
	a.startEventLoop()

	rec := match.KeptSession{ID: "kept-1", Counterpart: match.Identity{Name: "Quiet Owl"}}
	if err := archive.Put(rec, nil); err != nil {
		t.Fatal(err)
	}
	a.bus.Publish(bus.Event{Kind: bus.KindKeptDeleted})

	deadline := time.After(5 * time.Second)
	for a.vm.KeptTotal() != 1 {
		select {
		case <-draws:
		case <-deadline:
			t.Fatalf("no redraw with the reloaded kept list, KeptTotal = %d", a.vm.KeptTotal())
		}
	}
}
