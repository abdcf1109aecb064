package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// PromptMode selects what the input bar is collecting.
type PromptMode int

const (
	PromptCommand PromptMode = iota
	PromptFilter
)

var promptLabels = map[PromptMode]struct{ label, title string }{
	PromptCommand: {":", " Command "},
	PromptFilter:  {"/", " Filter kept chats "},
}

// Prompt is the single-line bar used for ":" commands and "/" filters.
// Command mode completes against the registered command names.
type Prompt struct {
	*tview.InputField
	mode     PromptMode
	commands []string
	onSubmit func(mode PromptMode, text string)
	onCancel func()
}

func NewPrompt(theme *Theme) *Prompt {
	p := &Prompt{InputField: tview.NewInputField()}
	p.SetBorder(true).
		SetBorderColor(theme.PromptBorderColor).
		SetBackgroundColor(theme.BgColor)
	p.SetFieldBackgroundColor(theme.BgColor).
		SetFieldTextColor(theme.FgColor).
		SetLabelColor(theme.MenuKeyColor)
	p.SetAutocompleteFunc(p.complete)
	p.SetDoneFunc(p.done)
	return p
}

// SetCommands sets the names offered as completions in command mode.
func (p *Prompt) SetCommands(names ...string) {
	p.commands = names
}

// SetOnSubmit registers the Enter handler. Filters submit empty text to clear.
func (p *Prompt) SetOnSubmit(fn func(mode PromptMode, text string)) {
	p.onSubmit = fn
}

func (p *Prompt) SetOnCancel(fn func()) {
	p.onCancel = fn
}

// Activate clears the bar and switches it to mode.
func (p *Prompt) Activate(mode PromptMode) {
	p.mode = mode
	p.SetText("")
	l := promptLabels[mode]
	p.SetLabel(l.label)
	p.SetTitle(l.title)
}

func (p *Prompt) Mode() PromptMode {
	return p.mode
}

func (p *Prompt) done(key tcell.Key) {
	switch key {
	case tcell.KeyEnter:
		text := p.GetText()
		p.SetText("")
		if p.onSubmit != nil {
			p.onSubmit(p.mode, text)
		}
	case tcell.KeyEscape:
		p.SetText("")
		if p.onCancel != nil {
			p.onCancel()
		}
	}
}

// complete offers command names once the first word is being typed.
func (p *Prompt) complete(current string) []string {
	if p.mode != PromptCommand || current == "" || strings.Contains(current, " ") {
		return nil
	}
	var out []string
	for _, c := range p.commands {
		if strings.HasPrefix(c, current) && c != current {
			out = append(out, c)
		}
	}
	return out
}
