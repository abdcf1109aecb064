package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/matheus3301/studybuddy/internal/match"
	"github.com/rivo/tview"
)

// FlashMessage is a notification with a level and expiry.
type FlashMessage struct {
	Text    string
	Level   match.Level
	Expires time.Time
}

// FlashModel holds the current notification. It implements match.Notifier.
type FlashModel struct {
	mu      sync.RWMutex
	current FlashMessage
	watchCh chan FlashMessage
	now     func() time.Time
}

// NewFlashModel creates a new flash model.
func NewFlashModel() *FlashModel {
	return &FlashModel{
		watchCh: make(chan FlashMessage, 8),
		now:     time.Now,
	}
}

// Notify implements match.Notifier.
func (f *FlashModel) Notify(level match.Level, text string) {
	f.set(text, level, lifetime(level))
}

// Info sets an info-level flash message.
func (f *FlashModel) Info(msg string) {
	f.set(msg, match.LevelInfo, lifetime(match.LevelInfo))
}

// Err sets an error-level flash message.
func (f *FlashModel) Err(err error) {
	f.set(err.Error(), match.LevelError, lifetime(match.LevelError))
}

func lifetime(level match.Level) time.Duration {
	switch level {
	case match.LevelError:
		return 10 * time.Second
	case match.LevelSuccess:
		return 4 * time.Second
	default:
		return 5 * time.Second
	}
}

func (f *FlashModel) set(msg string, level match.Level, d time.Duration) {
	f.mu.Lock()
	fm := FlashMessage{
		Text:    msg,
		Level:   level,
		Expires: f.now().Add(d),
	}
	f.current = fm
	f.mu.Unlock()
	select {
	case f.watchCh <- fm:
	default:
	}
}

// Current returns the current flash message, or nil if expired.
func (f *FlashModel) Current() *FlashMessage {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.current.Text == "" || f.now().After(f.current.Expires) {
		return nil
	}
	m := f.current
	return &m
}

// Watch returns a channel that receives flash messages.
func (f *FlashModel) Watch() <-chan FlashMessage {
	return f.watchCh
}

// FlashBar is the UI component that displays flash notifications.
type FlashBar struct {
	*tview.TextView
	theme *Theme
}

// NewFlashBar creates a new flash notification bar.
func NewFlashBar(theme *Theme) *FlashBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)

	return &FlashBar{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders a flash message on the bar.
func (fb *FlashBar) Update(msg *FlashMessage) {
	fb.Clear()
	if msg == nil {
		return
	}

	var color, icon string
	switch msg.Level {
	case match.LevelSuccess:
		color, icon = colorName(fb.theme.FlashSuccessColor), "✔"
	case match.LevelError:
		color, icon = colorName(fb.theme.FlashErrColor), "✘"
	default:
		color, icon = colorName(fb.theme.FlashInfoColor), "ℹ"
	}
	_, _ = fmt.Fprintf(fb, " [%s]%s %s[-]", color, icon, tview.Escape(msg.Text))
}
