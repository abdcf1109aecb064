package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// ProfileData holds what the header shows about the running profile.
type ProfileData struct {
	Profile string
	Stage   string
	Buddy   string
	Topics  []string
	Kept    int
}

// ProfileInfo displays profile and session metadata in the header.
type ProfileInfo struct {
	*tview.TextView
	theme *Theme
}

// NewProfileInfo creates a new profile info panel.
func NewProfileInfo(theme *Theme) *ProfileInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &ProfileInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders the profile info.
func (pi *ProfileInfo) Update(data *ProfileData) {
	pi.Clear()
	if data == nil {
		return
	}

	fg := colorName(pi.theme.FgColor)
	ct := colorName(pi.theme.CounterColor)

	buddy := data.Buddy
	if buddy == "" {
		buddy = "-"
	}
	topics := strings.Join(data.Topics, ", ")
	if topics == "" {
		topics = "-"
	}

	_, _ = fmt.Fprintf(pi,
		"[%s::b]Profile:[-:-:-] [%s]%s[-]\n"+
			"[%s::b]Stage:[-:-:-]   [%s]%s[-]\n"+
			"[%s::b]Buddy:[-:-:-]   [%s]%s[-]\n"+
			"[%s::b]Topics:[-:-:-]  [%s]%s[-]\n"+
			"[%s::b]Kept:[-:-:-]    [%s]%d[-]",
		fg, ct, tview.Escape(data.Profile),
		fg, ct, data.Stage,
		fg, ct, tview.Escape(buddy),
		fg, ct, tview.Escape(topics),
		fg, ct, data.Kept,
	)
}
