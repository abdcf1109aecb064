package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/studybuddy/internal/match"
	"github.com/matheus3301/studybuddy/internal/tui/ui"
	"github.com/rivo/tview"
)

// Chat displays the conversation with a composer underneath.
type Chat struct {
	*tview.Flex
	theme    *ui.Theme
	messages *tview.TextView
	composer *tview.InputField
	buddy    string
	onSend   func(text string)
	now      func() time.Time
}

// NewChat creates the chat view.
func NewChat(theme *ui.Theme) *Chat {
	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetTextColor(theme.FgColor)
	messages.SetTitle(" Chat ")
	messages.SetTitleColor(theme.TitleColor)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetFieldBackgroundColor(theme.BgColor)
	composer.SetFieldTextColor(theme.FgColor)
	composer.SetLabelColor(theme.MenuKeyColor)
	composer.SetTitle(" Say something (i to focus, Esc to leave) ")
	composer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, true).
		AddItem(composer, 3, 0, false)

	c := &Chat{
		Flex:     flex,
		theme:    theme,
		messages: messages,
		composer: composer,
		now:      time.Now,
	}

	composer.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && c.onSend != nil {
			text := composer.GetText()
			if text != "" {
				c.onSend(text)
				composer.SetText("")
			}
		}
	})

	return c
}

// Name implements ui.Component.
func (c *Chat) Name() string {
	if c.buddy != "" {
		return c.buddy
	}
	return "Chat"
}

// Hints implements ui.Component.
func (c *Chat) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "i", Description: "Compose"},
	}
}

// SetOnSend sets the callback when a message is submitted.
func (c *Chat) SetOnSend(fn func(text string)) {
	c.onSend = fn
}

// Update renders the session's messages, oldest first.
func (c *Chat) Update(s match.Session) {
	c.buddy = ""
	if s.Counterpart != nil {
		c.buddy = s.Counterpart.String()
	}
	c.messages.SetTitle(fmt.Sprintf(" %s ", display(c.Name())))
	c.messages.Clear()
	_, _ = fmt.Fprint(c.messages, c.render(s.Messages))
	c.messages.ScrollToEnd()
}

func (c *Chat) render(msgs []match.Message) string {
	if len(msgs) == 0 {
		return "\n [::d]Say hi! Your buddy is typing...[-:-:-]\n"
	}
	now := c.now()
	var sb strings.Builder
	for _, m := range msgs {
		sender, color := c.buddy, c.theme.CounterpartColor
		if m.Sender == match.Self {
			sender, color = "You", c.theme.SelfColor
		}
		fmt.Fprintf(&sb, "[%s::b]%s[-:-:-] [::d]%s[-:-:-]\n%s\n\n",
			ui.ColorTag(color), display(sender), formatTimestamp(m.Timestamp, now), display(m.Text))
	}
	return sb.String()
}

// Messages returns the messages text view (for focus management).
func (c *Chat) Messages() *tview.TextView {
	return c.messages
}

// Composer returns the composer input field (for focus management).
func (c *Chat) Composer() *tview.InputField {
	return c.composer
}
