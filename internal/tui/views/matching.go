package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/studybuddy/internal/tui/ui"
	"github.com/rivo/tview"
)

// Matching is shown while the machine looks for a buddy.
type Matching struct {
	*tview.TextView
	theme *ui.Theme
}

// NewMatching creates the waiting screen.
func NewMatching(theme *ui.Theme) *Matching {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Matching ")
	tv.SetTitleColor(theme.TitleColor)

	return &Matching{TextView: tv, theme: theme}
}

// Name implements ui.Component.
func (mv *Matching) Name() string { return "Matching" }

// Hints implements ui.Component.
func (mv *Matching) Hints() []ui.MenuHint {
	return []ui.MenuHint{{Key: "Esc", Description: "Cancel"}}
}

// Update shows the topics being matched on.
func (mv *Matching) Update(topics []string) {
	mv.Clear()
	_, _ = fmt.Fprintf(mv, "\n\n[%s::b]Finding your study buddy...[-:-:-]\n\n[::d]Topics: %s[-:-:-]",
		ui.ColorTag(mv.theme.TitleColor), display(strings.Join(topics, ", ")))
}
