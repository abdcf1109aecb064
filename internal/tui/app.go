package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/studybuddy/internal/bus"
	"github.com/matheus3301/studybuddy/internal/match"
	"github.com/matheus3301/studybuddy/internal/route"
	"github.com/matheus3301/studybuddy/internal/tui/keys"
	"github.com/matheus3301/studybuddy/internal/tui/model"
	"github.com/matheus3301/studybuddy/internal/tui/ui"
	"github.com/matheus3301/studybuddy/internal/tui/views"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

const (
	pageTopics    = "topics"
	pageMatching  = "matching"
	pageChat      = "chat"
	pageMinimized = "minimized"
	pageEnd       = "end"
	pageKept      = "kept"
	pageKeptInfo  = "kept-info"
	pageHelp      = "help"
)

// stagePage returns the page that shows a machine stage.
func stagePage(s match.Stage) string {
	switch s {
	case match.Matching:
		return pageMatching
	case match.Chatting:
		return pageChat
	case match.Minimized:
		return pageMinimized
	default:
		return pageTopics
	}
}

func isStagePage(name string) bool {
	switch name {
	case pageTopics, pageMatching, pageChat, pageMinimized:
		return true
	}
	return false
}

// App is the terminal shell around the Soul Match machine. It implements
// match.Navigator.
type App struct {
	app      *tview.Application
	root     *tview.Flex
	theme    *ui.Theme
	pages    *ui.Pages
	registry *keys.Registry
	flash    *ui.FlashModel
	vm       *model.ViewModel
	machine  *match.Machine
	archive  *match.Archive
	bus      *bus.Bus
	logger   *zap.Logger
	profile  string
	start    *route.Route

	info     *ui.ProfileInfo
	menu     *ui.Menu
	crumbs   *ui.Crumbs
	flashBar *ui.FlashBar
	prompt   *ui.Prompt

	topics    *views.TopicPicker
	matching  *views.Matching
	chat      *views.Chat
	minimized *views.Minimized
	endChat   *views.EndChat
	keptList  *views.KeptList
	keptInfo  *views.KeptInfo
	help      *views.HelpView

	components map[string]ui.Component
	focus      map[string]tview.Primitive

	// ops runs machine operations one at a time, in key-press order.
	ops    chan func() error
	redraw func()

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI and registers it as the machine's navigator.
func NewApp(m *match.Machine, archive *match.Archive, b *bus.Bus, flash *ui.FlashModel, logger *zap.Logger, profile string) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:       tview.NewApplication(),
		theme:     theme,
		pages:     ui.NewPages(),
		registry:  keys.NewRegistry(),
		flash:     flash,
		vm:        model.NewViewModel(m, archive),
		machine:   m,
		archive:   archive,
		bus:       b,
		logger:    logger,
		profile:   profile,
		info:      ui.NewProfileInfo(theme),
		menu:      ui.NewMenu(theme),
		crumbs:    ui.NewCrumbs(theme),
		flashBar:  ui.NewFlashBar(theme),
		prompt:    ui.NewPrompt(theme),
		topics:    views.NewTopicPicker(theme, match.Topics),
		matching:  views.NewMatching(theme),
		chat:      views.NewChat(theme),
		minimized: views.NewMinimized(theme),
		endChat:   views.NewEndChat(theme),
		keptList:  views.NewKeptList(theme),
		keptInfo:  views.NewKeptInfo(theme),
		help:      views.NewHelpView(theme),
		ops:       make(chan func() error, 64),
		ctx:       ctx,
		cancel:    cancel,
	}
	a.redraw = func() { a.app.QueueUpdateDraw(a.render) }

	a.setupPages()
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()
	m.SetNavigator(a)
	go a.runOps()

	return a
}

// OpenOnStart makes Run open r once the UI is up.
func (a *App) OpenOnStart(r route.Route) {
	a.start = &r
}

func (a *App) setupPages() {
	a.components = map[string]ui.Component{
		pageTopics:    a.topics,
		pageMatching:  a.matching,
		pageChat:      a.chat,
		pageMinimized: a.minimized,
		pageEnd:       a.endChat,
		pageKept:      a.keptList,
		pageKeptInfo:  a.keptInfo,
		pageHelp:      a.help,
	}
	a.focus = map[string]tview.Primitive{
		pageTopics:    a.topics,
		pageMatching:  a.matching,
		pageChat:      a.chat.Composer(),
		pageMinimized: a.minimized,
		pageEnd:       a.endChat,
		pageKept:      a.keptList,
		pageKeptInfo:  a.keptInfo,
		pageHelp:      a.help,
	}
	a.pages.Register(pageTopics, a.topics.Name(), a.topics)
	a.pages.Register(pageMatching, a.matching.Name(), a.matching)
	a.pages.Register(pageChat, a.chat.Name(), a.chat)
	a.pages.Register(pageMinimized, a.minimized.Name(), a.minimized)
	a.pages.Register(pageEnd, a.endChat.Name(), a.endChat)
	a.pages.Register(pageKept, a.keptList.Name(), a.keptList)
	a.pages.Register(pageKeptInfo, a.keptInfo.Name(), a.keptInfo)
	a.pages.Register(pageHelp, a.help.Name(), a.help)

	a.pages.SetOnChange(func([]string) { a.updateChrome() })
}

func (a *App) setupBindings() {
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: ':', Description: "Command", Visible: true,
		Handler: func() { a.showPrompt(ui.PromptCommand) },
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: 'k', Description: "Kept chats", Visible: true,
		Handler: func() { go a.machine.ShowKept() },
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: '?', Description: "Help", Visible: true,
		Handler: a.showHelp,
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyEscape, Label: "Esc", Description: "Back", Visible: true,
		Handler: a.back,
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: 'q', Description: "Quit", Visible: true,
		Handler: a.Stop,
	})

	a.registry.AddView(pageTopics, &keys.Action{
		Key: tcell.KeyRune, Rune: 's', Description: "Start matching", Visible: true,
		Handler: func() { a.do(a.machine.Start) },
	})

	a.registry.AddView(pageMatching, &keys.Action{
		Key: tcell.KeyEscape, Label: "Esc", Description: "Cancel", Visible: true,
		Handler: func() { a.do(a.machine.CancelMatching) },
	})

	a.registry.AddView(pageChat, &keys.Action{
		Key: tcell.KeyRune, Rune: 'i', Description: "Compose", Visible: true,
		Handler: func() { a.app.SetFocus(a.chat.Composer()) },
	})
	a.registry.AddView(pageChat, &keys.Action{
		Key: tcell.KeyRune, Rune: 'm', Description: "Minimize", Visible: true,
		Handler: func() { a.do(a.machine.Minimize) },
	})
	a.registry.AddView(pageChat, &keys.Action{
		Key: tcell.KeyRune, Rune: 'e', Description: "End chat", Visible: true,
		Handler: func() { a.do(a.machine.RequestEnd) },
	})

	a.registry.AddView(pageMinimized, &keys.Action{
		Key: tcell.KeyRune, Rune: 'r', Description: "Restore", Visible: true,
		Handler: func() { a.do(a.machine.Restore) },
	})
	a.registry.AddView(pageMinimized, &keys.Action{
		Key: tcell.KeyRune, Rune: 'e', Description: "End chat", Visible: true,
		Handler: func() { a.do(a.machine.RequestEnd) },
	})

	a.registry.AddView(pageKept, &keys.Action{
		Key: tcell.KeyRune, Rune: 'v', Description: "Details", Visible: true,
		Handler: a.showKeptInfo,
	})
	a.registry.AddView(pageKept, &keys.Action{
		Key: tcell.KeyRune, Rune: 'd', Description: "Delete", Visible: true,
		Handler: a.deleteSelected,
	})
	a.registry.AddView(pageKept, &keys.Action{
		Key: tcell.KeyRune, Rune: '/', Description: "Filter", Visible: true,
		Handler: func() { a.showPrompt(ui.PromptFilter) },
	})

	a.registry.AddView(pageKeptInfo, &keys.Action{
		Key: tcell.KeyEnter, Label: "Enter", Description: "Resume",
		Handler: func() { a.resume(a.keptInfo.ID()) },
	})
}

func (a *App) setupCallbacks() {
	a.topics.SetOnToggle(func(topic string) {
		a.do(func() error { return a.machine.ToggleTopic(topic) })
	})

	a.chat.SetOnSend(func(text string) {
		a.do(func() error { return a.machine.Send(text) })
	})

	a.endChat.SetOnChoice(func(c views.EndChoice) {
		switch c {
		case views.EndKeep:
			a.do(func() error {
				_, err := a.machine.Keep()
				return err
			})
		case views.EndDiscard:
			a.do(func() error { return a.machine.Discard(false) })
		case views.EndReport:
			a.do(func() error { return a.machine.Discard(true) })
		default:
			a.do(a.machine.CancelEnd)
		}
	})

	a.keptList.SetSelectedFunc(func(int, int) {
		if k, ok := a.keptList.Selected(); ok {
			a.resume(k.ID)
		}
	})

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.hidePrompt()
		switch mode {
		case ui.PromptFilter:
			a.vm.SetFilter(text)
			a.render()
		default:
			a.runCommand(ParseCommand(text))
		}
	})
	a.prompt.SetOnCancel(a.hidePrompt)
	a.prompt.SetCommands("kept", "match", "open", "help", "quit")
}

func (a *App) setupLayout() {
	header := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.info, 0, 2, false).
		AddItem(a.menu, 0, 2, false).
		AddItem(ui.NewLogo(a.theme), 16, 0, false)

	a.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 6, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.flashBar, 1, 0, false)

	a.app.SetRoot(a.root, true)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		focused := a.app.GetFocus()
		if focused == a.prompt || focused == a.prompt.InputField {
			return event
		}
		current := a.pages.Current()
		if current == pageEnd {
			return event
		}
		if focused == a.chat.Composer() {
			if event.Key() == tcell.KeyEscape {
				a.app.SetFocus(a.chat.Messages())
				return nil
			}
			return event
		}
		if a.registry.HandleEvent(current, event) {
			return nil
		}
		return event
	})
}

// Run starts the event loop and blocks until the UI exits.
func (a *App) Run() error {
	a.vm.LoadSession()
	if err := a.vm.LoadKept(); err != nil {
		a.logger.Warn("failed to load kept chats", zap.Error(err))
		a.flash.Err(err)
	}
	a.showMatch()
	a.startEventLoop()

	if a.start != nil {
		r := *a.start
		go a.Open(r)
	}
	return a.app.Run()
}

// Stop shuts the UI down.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

// Open navigates to r. It must not be called from the UI goroutine.
func (a *App) Open(r route.Route) {
	a.logger.Info("opening link", zap.String("link", r.Format()))
	switch {
	case r.Page == route.PageKept:
		a.machine.ShowKept()
	case r.SessionID != "":
		a.machine.OpenKept(r.SessionID)
	default:
		a.app.QueueUpdateDraw(a.showMatch)
	}
}

// ShowKept implements match.Navigator.
func (a *App) ShowKept() {
	if err := a.vm.LoadKept(); err != nil {
		a.flash.Err(err)
	}
	a.app.QueueUpdateDraw(func() {
		a.pages.Push(pageKept)
		a.render()
		a.focusCurrent()
	})
}

// OpenMatch implements match.Navigator: it returns to Soul Match and
// resumes the kept session id.
func (a *App) OpenMatch(id string) {
	if err := a.machine.Resume(id); err != nil {
		a.logger.Info("resume refused", zap.String("session_id", id), zap.Error(err))
		return
	}
	a.vm.LoadSession()
	a.app.QueueUpdateDraw(a.showMatch)
}

func (a *App) startEventLoop() {
	events, unsub := a.bus.Subscribe("match.", 256)
	deleted, unsubDeleted := a.bus.Subscribe("kept.", 16)
	ticker := time.NewTicker(time.Second)

	go func() {
		defer unsub()
		defer unsubDeleted()
		defer ticker.Stop()
		for {
			select {
			case evt := <-events:
				a.vm.LoadSession()
				switch evt.Kind {
				case bus.KindStageChanged, bus.KindKept, bus.KindResumed:
					a.loadKept()
				}
				continue
			case <-deleted:
				a.loadKept()
				continue
			case <-a.vm.RefreshCh():
			case <-a.flash.Watch():
			case <-ticker.C:
			case <-a.ctx.Done():
				return
			}
			a.redraw()
		}
	}()
}

func (a *App) loadKept() {
	if err := a.vm.LoadKept(); err != nil {
		a.logger.Warn("failed to reload kept chats", zap.Error(err))
	}
}

// render refreshes every view from the view model. UI goroutine only.
func (a *App) render() {
	s := a.vm.Session()
	a.syncStage(s)

	a.topics.Update(s.Topics)
	a.matching.Update(s.Topics)
	a.chat.Update(s)
	a.minimized.Update(s)
	a.keptList.Update(a.vm.Kept(), a.vm.Filter(), a.vm.KeptTotal())

	buddy := ""
	if s.Counterpart != nil {
		buddy = s.Counterpart.String()
	}
	a.info.Update(&ui.ProfileData{
		Profile: a.profile,
		Stage:   string(s.Stage),
		Buddy:   buddy,
		Topics:  s.Topics,
		Kept:    a.vm.KeptTotal(),
	})
	a.updateChrome()
	a.flashBar.Update(a.flash.Current())
}

// syncStage keeps the Soul Match page in step with the machine. Pages pushed
// on top (kept list, help) are left alone until popped.
func (a *App) syncStage(s match.Session) {
	if a.pages.Current() == pageEnd && !s.Ending {
		a.pages.Pop()
		a.focusCurrent()
	}
	current := a.pages.Current()
	if want := stagePage(s.Stage); isStagePage(current) && current != want {
		a.pages.Replace(want)
		a.focusCurrent()
	}
	if s.Ending && isStagePage(a.pages.Current()) {
		a.endChat.Reset()
		a.pages.Overlay(pageEnd)
		a.focusCurrent()
	}
}

func (a *App) showMatch() {
	a.pages.Reset(stagePage(a.vm.Session().Stage))
	a.render()
	a.focusCurrent()
}

func (a *App) updateChrome() {
	stack := a.pages.Stack()
	titles := make([]string, 0, len(stack))
	for _, name := range stack {
		if c, ok := a.components[name]; ok {
			titles = append(titles, c.Name())
		} else {
			titles = append(titles, a.pages.Title(name))
		}
	}
	a.crumbs.Update(titles)

	current := a.pages.Current()
	var hints []ui.MenuHint
	if c, ok := a.components[current]; ok {
		hints = append(hints, c.Hints()...)
	}
	a.menu.Update(append(hints, a.registry.Hints(current)...))
}

func (a *App) focusCurrent() {
	if p, ok := a.focus[a.pages.Current()]; ok {
		a.app.SetFocus(p)
	}
}

func (a *App) back() {
	if a.pages.Pop() != "" {
		a.render()
		a.focusCurrent()
	}
}

func (a *App) showHelp() {
	a.pages.Push(pageHelp)
	a.focusCurrent()
}

func (a *App) showKeptInfo() {
	k, ok := a.keptList.Selected()
	if !ok {
		return
	}
	a.keptInfo.Update(k)
	a.pages.Push(pageKeptInfo)
	a.focusCurrent()
}

func (a *App) deleteSelected() {
	k, ok := a.keptList.Selected()
	if !ok {
		return
	}
	go func() {
		if err := a.archive.Delete(k.ID); err != nil {
			a.logger.Error("failed to delete kept chat", zap.String("session_id", k.ID), zap.Error(err))
			a.flash.Err(err)
			return
		}
		a.flash.Notify(match.LevelSuccess, "Deleted chat with "+k.Counterpart.Name+".")
	}()
}

func (a *App) resume(id string) {
	if id == "" {
		return
	}
	go a.machine.OpenKept(id)
}

func (a *App) showPrompt(mode ui.PromptMode) {
	a.prompt.Activate(mode)
	if mode == ui.PromptFilter {
		a.prompt.SetText(a.vm.Filter())
	}
	a.root.ResizeItem(a.prompt, 3, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) hidePrompt() {
	a.root.ResizeItem(a.prompt, 0, 0)
	a.focusCurrent()
}

func (a *App) runCommand(cmd Command) {
	switch cmd.Name {
	case "":
	case "kept", "k":
		go a.machine.ShowKept()
	case "match", "m":
		a.showMatch()
	case "open", "o":
		r, err := ParseTarget(cmd.Args)
		if err != nil {
			a.flash.Err(err)
			return
		}
		go a.Open(r)
	case "help", "h", "?":
		a.showHelp()
	case "quit", "q":
		a.Stop()
	default:
		a.flash.Notify(match.LevelError, fmt.Sprintf("Unknown command %q. Try :help.", cmd.Name))
	}
}

// do queues a machine operation for the ops worker so it runs off the UI
// goroutine, after every operation queued before it. The machine notifies the
// user about failures itself; refused transitions only reach the log.
func (a *App) do(op func() error) {
	select {
	case a.ops <- op:
	case <-a.ctx.Done():
	}
}

func (a *App) runOps() {
	for {
		select {
		case op := <-a.ops:
			if err := op(); err != nil {
				a.logger.Debug("action refused", zap.Error(err))
			}
		case <-a.ctx.Done():
			return
		}
	}
}
