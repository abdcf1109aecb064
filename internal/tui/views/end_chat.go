package views

import (
	"github.com/matheus3301/studybuddy/internal/tui/ui"
	"github.com/rivo/tview"
)

// EndChoice is the option picked on the end-chat dialog.
type EndChoice int

const (
	EndCancel EndChoice = iota
	EndKeep
	EndDiscard
	EndReport
)

var endButtons = []string{"Keep chat", "End chat", "End and report", "Cancel"}

// EndChat asks whether to keep or discard the conversation.
type EndChat struct {
	*tview.Modal
	onChoice func(EndChoice)
}

// NewEndChat creates the end-chat dialog.
func NewEndChat(theme *ui.Theme) *EndChat {
	modal := tview.NewModal().
		SetText("Keep this chat to pick it up later, or end it for good?").
		AddButtons(endButtons)
	modal.SetBackgroundColor(theme.BgColor)
	modal.SetBorderColor(theme.BorderFocusColor)
	modal.SetTextColor(theme.FgColor)
	modal.SetTitle(" End chat ")

	ec := &EndChat{Modal: modal}
	modal.SetDoneFunc(func(index int, _ string) {
		if ec.onChoice != nil {
			ec.onChoice(choiceAt(index))
		}
	})
	return ec
}

func choiceAt(index int) EndChoice {
	switch index {
	case 0:
		return EndKeep
	case 1:
		return EndDiscard
	case 2:
		return EndReport
	default:
		return EndCancel
	}
}

// Name implements ui.Component.
func (ec *EndChat) Name() string { return "End chat" }

// Hints implements ui.Component.
func (ec *EndChat) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Tab", Description: "Next option"},
		{Key: "Enter", Description: "Choose"},
		{Key: "Esc", Description: "Cancel"},
	}
}

// SetOnChoice sets the callback for the selected option. Esc reports EndCancel.
func (ec *EndChat) SetOnChoice(fn func(EndChoice)) {
	ec.onChoice = fn
}

// Reset focuses the first button.
func (ec *EndChat) Reset() {
	ec.SetFocus(0)
}
