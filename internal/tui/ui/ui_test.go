package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/studybuddy/internal/match"
	"github.com/rivo/tview"
)

func newTestPages() *Pages {
	p := NewPages()
	for _, name := range []string{"topics", "matching", "chat", "kept"} {
		p.Register(name, strings.ToUpper(name[:1])+name[1:], tview.NewBox())
	}
	return p
}

func TestPagesStack(t *testing.T) {
	p := newTestPages()
	var changes [][]string
	p.SetOnChange(func(s []string) { changes = append(changes, s) })

	p.Reset("topics")
	p.Push("kept")
	p.Push("kept")
	if got := p.Stack(); len(got) != 2 || got[1] != "kept" {
		t.Fatalf("stack = %v", got)
	}

	if top := p.Pop(); top != "kept" {
		t.Errorf("Pop = %q, want kept", top)
	}
	if top := p.Pop(); top != "" {
		t.Errorf("Pop on root = %q, want empty", top)
	}
	if p.Current() != "topics" {
		t.Errorf("Current = %q", p.Current())
	}
	if len(changes) != 3 {
		t.Errorf("got %d change notifications, want 3", len(changes))
	}
}

func TestPagesReplace(t *testing.T) {
	p := newTestPages()
	p.Reset("topics")
	p.Push("matching")
	p.Replace("chat")

	got := p.Stack()
	if len(got) != 2 || got[0] != "topics" || got[1] != "chat" {
		t.Fatalf("stack = %v, want [topics chat]", got)
	}
	if !p.Contains("topics") || p.Contains("matching") {
		t.Errorf("Contains mismatch for %v", got)
	}
	if p.Title("chat") != "Chat" || p.Title("nope") != "nope" {
		t.Errorf("unexpected titles")
	}
}

func TestFlashModel(t *testing.T) {
	f := NewFlashModel()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return now }

	if f.Current() != nil {
		t.Fatal("expected no flash initially")
	}

	var n match.Notifier = f
	n.Notify(match.LevelSuccess, "Chat ended.")

	msg := f.Current()
	if msg == nil || msg.Text != "Chat ended." || msg.Level != match.LevelSuccess {
		t.Fatalf("Current = %+v", msg)
	}
	select {
	case got := <-f.Watch():
		if got.Text != "Chat ended." {
			t.Errorf("watched %q", got.Text)
		}
	default:
		t.Error("expected a watched message")
	}

	now = now.Add(time.Minute)
	if f.Current() != nil {
		t.Error("flash should expire")
	}
}

func TestCrumbsRender(t *testing.T) {
	c := NewCrumbs(DefaultTheme())
	out := c.render([]string{"Soul Match", "Kept chats"})
	if !strings.Contains(out, " Soul Match ") || !strings.Contains(out, " > ") {
		t.Errorf("render = %q", out)
	}
	if strings.Count(out, ":b]") != 1 {
		t.Errorf("want exactly one active crumb in %q", out)
	}
}

func TestPromptCompletesCommandsOnly(t *testing.T) {
	p := NewPrompt(DefaultTheme())
	p.SetCommands("kept", "match", "open", "help", "quit")

	p.Activate(PromptCommand)
	if got := p.complete("k"); len(got) != 1 || got[0] != "kept" {
		t.Errorf("complete(k) = %v", got)
	}
	if got := p.complete("kept"); got != nil {
		t.Errorf("complete(kept) = %v, want nothing once typed", got)
	}
	if got := p.complete("open x"); got != nil {
		t.Errorf("complete(open x) = %v, want no argument completion", got)
	}

	p.Activate(PromptFilter)
	if got := p.complete("k"); got != nil {
		t.Errorf("filter mode should not complete, got %v", got)
	}
}

func TestPromptSubmitAndCancel(t *testing.T) {
	p := NewPrompt(DefaultTheme())
	var submitted []string
	cancelled := 0
	p.SetOnSubmit(func(mode PromptMode, text string) {
		if mode != PromptFilter {
			t.Errorf("mode = %v", mode)
		}
		submitted = append(submitted, text)
	})
	p.SetOnCancel(func() { cancelled++ })

	p.Activate(PromptFilter)
	if p.GetLabel() != "/" {
		t.Errorf("label = %q", p.GetLabel())
	}
	p.SetText("math")
	p.done(tcell.KeyTab)
	if p.GetText() != "math" {
		t.Errorf("tab cleared the text")
	}
	p.done(tcell.KeyEnter)
	p.done(tcell.KeyEnter)
	p.SetText("gone")
	p.done(tcell.KeyEscape)

	if len(submitted) != 2 || submitted[0] != "math" || submitted[1] != "" {
		t.Errorf("submitted = %q", submitted)
	}
	if cancelled != 1 || p.GetText() != "" {
		t.Errorf("cancelled = %d, text = %q", cancelled, p.GetText())
	}
}
