package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/studybuddy/internal/tui/ui"
	"github.com/rivo/tview"
)

// HelpView displays key binding reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	_, _ = fmt.Fprint(hv, hv.render())
	return hv
}

// Name implements ui.Component.
func (hv *HelpView) Name() string { return "Help" }

// Hints implements ui.Component.
func (hv *HelpView) Hints() []ui.MenuHint { return nil }

type helpSection struct {
	title string
	rows  [][2]string
}

var helpSections = []helpSection{
	{"Global", [][2]string{
		{":", "Command mode"},
		{"k", "Kept chats"},
		{"?", "Help"},
		{"Esc", "Back"},
		{"Ctrl-C", "Quit"},
	}},
	{"Topics", [][2]string{
		{"Enter", "Toggle topic under cursor"},
		{"s", "Start matching"},
	}},
	{"Chat", [][2]string{
		{"i", "Focus composer"},
		{"Enter", "Send (in composer)"},
		{"m", "Minimize, keeping the chat for later"},
		{"e", "End chat: keep, end or report"},
	}},
	{"Kept chats", [][2]string{
		{"Enter", "Resume"},
		{"v", "Details and QR link"},
		{"d", "Delete"},
		{"/", "Filter"},
	}},
	{"Commands", [][2]string{
		{":kept", "Show kept chats"},
		{":match", "Back to Soul Match"},
		{":open <link|id>", "Resume a kept chat"},
		{":help", "Show this help"},
		{":quit", "Quit"},
	}},
}

func (hv *HelpView) render() string {
	kc := ui.ColorTag(hv.theme.MenuKeyColor)
	var sb strings.Builder
	for _, s := range helpSections {
		fmt.Fprintf(&sb, "\n  [::b]%s[-:-:-]\n\n", s.title)
		for _, r := range s.rows {
			fmt.Fprintf(&sb, "  [%s]%-16s[-:-:-] %s\n", kc, tview.Escape(r[0]), r[1])
		}
	}
	return sb.String()
}
