package views

import (
	"fmt"
	"slices"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/studybuddy/internal/tui/ui"
	"github.com/rivo/tview"
)

// TopicPicker lists the topic catalogue and shows which ones are selected.
type TopicPicker struct {
	*tview.Table
	theme    *ui.Theme
	topics   []string
	selected []string
	onToggle func(topic string)
}

// NewTopicPicker creates the selection screen over the given catalogue.
func NewTopicPicker(theme *ui.Theme, topics []string) *TopicPicker {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitleColor(theme.TitleColor)

	tp := &TopicPicker{
		Table:  table,
		theme:  theme,
		topics: slices.Clone(topics),
	}
	table.SetSelectedFunc(func(row, _ int) {
		if tp.onToggle != nil && row >= 0 && row < len(tp.topics) {
			tp.onToggle(tp.topics[row])
		}
	})
	tp.render()
	return tp
}

// Name implements ui.Component.
func (tp *TopicPicker) Name() string { return "Soul Match" }

// Hints implements ui.Component.
func (tp *TopicPicker) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Toggle topic"},
	}
}

// SetOnToggle sets the callback invoked with the topic under the cursor.
func (tp *TopicPicker) SetOnToggle(fn func(topic string)) {
	tp.onToggle = fn
}

// Update marks the given topics as selected.
func (tp *TopicPicker) Update(selected []string) {
	tp.selected = slices.Clone(selected)
	tp.render()
}

func (tp *TopicPicker) render() {
	tp.Clear()
	for row, topic := range tp.topics {
		mark, color := "[ ]", tp.theme.TopicOffColor
		if slices.Contains(tp.selected, topic) {
			mark, color = "[x]", tp.theme.TopicOnColor
		}
		tp.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(mark)).SetTextColor(color))
		tp.SetCell(row, 1, tview.NewTableCell(" "+tview.Escape(topic)).SetExpansion(1).SetTextColor(tp.theme.FgColor))
	}
	tp.SetTitle(fmt.Sprintf(" Pick topics (%d selected), then press s to match ", len(tp.selected)))
}
