package views

import (
	"fmt"

	"github.com/matheus3301/studybuddy/internal/match"
	"github.com/matheus3301/studybuddy/internal/tui/ui"
	"github.com/rivo/tview"
)

// Minimized stands in for a chat that was kept for later but not ended.
type Minimized struct {
	*tview.TextView
	theme *ui.Theme
}

// NewMinimized creates the placeholder view.
func NewMinimized(theme *ui.Theme) *Minimized {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Minimized ")
	tv.SetTitleColor(theme.TitleColor)
	return &Minimized{TextView: tv, theme: theme}
}

// Name implements ui.Component.
func (mv *Minimized) Name() string { return "Minimized" }

// Hints implements ui.Component.
func (mv *Minimized) Hints() []ui.MenuHint { return nil }

// Update shows who the minimized chat is with and how many messages arrived.
func (mv *Minimized) Update(s match.Session) {
	mv.Clear()
	buddy := "your buddy"
	if s.Counterpart != nil {
		buddy = s.Counterpart.String()
	}
	_, _ = fmt.Fprintf(mv, "\n\nYour chat with [%s::b]%s[-:-:-] is minimized.\n\n[::d]%d messages so far. Press r to restore.[-:-:-]",
		ui.ColorTag(mv.theme.CounterpartColor), display(buddy), len(s.Messages))
}
