package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/studybuddy/internal/match"
	"github.com/matheus3301/studybuddy/internal/route"
	"github.com/matheus3301/studybuddy/internal/tui/ui"
	"github.com/rivo/tview"
)

// KeptInfo shows a kept conversation's details and a QR code of its
// resume link.
type KeptInfo struct {
	*tview.TextView
	theme *ui.Theme
	id    string
}

// NewKeptInfo creates the details view.
func NewKeptInfo(theme *ui.Theme) *KeptInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Kept chat ")
	tv.SetTitleColor(theme.TitleColor)

	return &KeptInfo{TextView: tv, theme: theme}
}

// Name implements ui.Component.
func (ki *KeptInfo) Name() string { return "Details" }

// Hints implements ui.Component.
func (ki *KeptInfo) Hints() []ui.MenuHint {
	return []ui.MenuHint{{Key: "Enter", Description: "Resume"}}
}

// ID returns the id of the session on display.
func (ki *KeptInfo) ID() string { return ki.id }

// Update renders k.
func (ki *KeptInfo) Update(k match.KeptSession) {
	ki.Clear()
	ki.id = k.ID

	fg := ui.ColorTag(ki.theme.FgColor)
	ct := ui.ColorTag(ki.theme.CounterColor)
	link := route.Match(k.ID).Format()

	_, _ = fmt.Fprintf(ki,
		"\n [%s::b]Buddy:[-:-:-]        [%s]%s[-]\n"+
			" [%s::b]Topics:[-:-:-]       [%s]%s[-]\n"+
			" [%s::b]Messages:[-:-:-]     [%s]%d[-]\n"+
			" [%s::b]Kept at:[-:-:-]      [%s]%s[-]\n"+
			" [%s::b]Last message:[-:-:-] [%s]%s[-]\n"+
			" [%s::b]Link:[-:-:-]         [%s]%s[-]\n\n",
		fg, ct, display(k.Counterpart.String()),
		fg, ct, display(strings.Join(k.Topics, ", ")),
		fg, ct, k.MessageCount,
		fg, ct, k.KeptAt.Local().Format("2006-01-02 15:04"),
		fg, ct, display(k.LastMessagePreview),
		fg, ct, tview.Escape(link),
	)

	qr, err := route.QR(link, "  ")
	if err != nil {
		_, _ = fmt.Fprintf(ki, "  (QR generation failed: %s)", tview.Escape(err.Error()))
	} else {
		_, _ = fmt.Fprint(ki, qr)
	}
	ki.SetTitle(fmt.Sprintf(" %s ", display(k.Counterpart.Name)))
	ki.ScrollToBeginning()
}
