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

// KeptList is the table of kept conversations.
type KeptList struct {
	*tview.Table
	theme *ui.Theme
	kept  []match.KeptSession
	now   func() time.Time
}

// NewKeptList creates the kept-conversations table.
func NewKeptList(theme *ui.Theme) *KeptList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(" Kept chats ")
	table.SetTitleColor(theme.TitleColor)

	return &KeptList{
		Table: table,
		theme: theme,
		now:   time.Now,
	}
}

// Name implements ui.Component.
func (kl *KeptList) Name() string { return "Kept chats" }

// Hints implements ui.Component.
func (kl *KeptList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Resume"},
	}
}

// Update refreshes the table. filter and total only affect the title.
func (kl *KeptList) Update(kept []match.KeptSession, filter string, total int) {
	kl.kept = kept
	kl.render()
	if filter != "" {
		kl.SetTitle(fmt.Sprintf(" Kept chats (%d/%d) filter: %s ", len(kept), total, tview.Escape(filter)))
	} else {
		kl.SetTitle(fmt.Sprintf(" Kept chats (%d) ", total))
	}
}

func (kl *KeptList) render() {
	kl.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{" BUDDY", 1},
		{" TOPICS", 1},
		{" LAST MESSAGE", 2},
		{" MSGS", 0},
		{" KEPT", 0},
	}
	for col, h := range headers {
		cell := tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(kl.theme.TableHeaderFg).
			SetBackgroundColor(kl.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp)
		kl.SetCell(0, col, cell)
	}

	if len(kl.kept) == 0 {
		kl.SetCell(1, 0, tview.NewTableCell(" Nothing kept yet. End a chat with Keep to see it here.").
			SetSelectable(false).
			SetTextColor(kl.theme.TopicOffColor))
		return
	}

	now := kl.now()
	for i, k := range kl.kept {
		row := i + 1
		kl.SetCell(row, 0, tview.NewTableCell(" "+display(k.Counterpart.String())).SetExpansion(1).SetTextColor(kl.theme.CounterpartColor))
		kl.SetCell(row, 1, tview.NewTableCell(" "+display(strings.Join(k.Topics, ", "))).SetExpansion(1).SetTextColor(kl.theme.FgColor))
		kl.SetCell(row, 2, tview.NewTableCell(" "+display(k.LastMessagePreview)).SetExpansion(2).SetMaxWidth(48).SetTextColor(kl.theme.FgColor))
		kl.SetCell(row, 3, tview.NewTableCell(fmt.Sprintf("%d", k.MessageCount)).SetTextColor(kl.theme.CounterColor).SetAlign(tview.AlignRight))
		kl.SetCell(row, 4, tview.NewTableCell(" "+formatTimestamp(k.KeptAt, now)).SetTextColor(kl.theme.FgColor).SetAlign(tview.AlignRight))
	}
}

// Selected returns the kept session under the cursor.
func (kl *KeptList) Selected() (match.KeptSession, bool) {
	row, _ := kl.GetSelection()
	idx := row - 1
	if idx < 0 || idx >= len(kl.kept) {
		return match.KeptSession{}, false
	}
	return kl.kept[idx], true
}
