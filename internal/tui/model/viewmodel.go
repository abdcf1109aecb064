package model

import (
	"slices"
	"strings"
	"sync"

	"github.com/matheus3301/studybuddy/internal/match"
)

// Source is the part of the match machine the view model reads.
type Source interface {
	Snapshot() match.Session
}

// Lister is the part of the archive the view model reads.
type Lister interface {
	List() ([]match.KeptSession, error)
}

// ViewModel caches machine and archive state for rendering and signals
// refreshes. Reads and writes happen off the UI goroutine.
type ViewModel struct {
	mu sync.RWMutex

	source  Source
	archive Lister
	session match.Session
	kept    []match.KeptSession
	filter  string

	refreshCh chan struct{}
}

// NewViewModel creates a view model over the machine and archive.
func NewViewModel(source Source, archive Lister) *ViewModel {
	return &ViewModel{
		source:    source,
		archive:   archive,
		refreshCh: make(chan struct{}, 1),
	}
}

// RefreshCh returns the channel that signals UI refresh.
func (vm *ViewModel) RefreshCh() <-chan struct{} {
	return vm.refreshCh
}

func (vm *ViewModel) signalRefresh() {
	select {
	case vm.refreshCh <- struct{}{}:
	default:
	}
}

// LoadSession takes a fresh snapshot of the running session.
func (vm *ViewModel) LoadSession() {
	s := vm.source.Snapshot()
	vm.mu.Lock()
	vm.session = s
	vm.mu.Unlock()
	vm.signalRefresh()
}

// LoadKept reloads the kept-conversations list.
func (vm *ViewModel) LoadKept() error {
	kept, err := vm.archive.List()
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.kept = kept
	vm.mu.Unlock()
	vm.signalRefresh()
	return nil
}

// Session returns the cached session.
func (vm *ViewModel) Session() match.Session {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.session
}

// SetFilter narrows Kept to records whose buddy, topics or preview contain
// text, case-insensitively. Empty text clears the filter.
func (vm *ViewModel) SetFilter(text string) {
	vm.mu.Lock()
	vm.filter = strings.TrimSpace(text)
	vm.mu.Unlock()
	vm.signalRefresh()
}

// Filter returns the active filter text.
func (vm *ViewModel) Filter() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.filter
}

// Kept returns the cached kept list, filtered, most recent first.
func (vm *ViewModel) Kept() []match.KeptSession {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if vm.filter == "" {
		return slices.Clone(vm.kept)
	}
	var out []match.KeptSession
	for _, k := range vm.kept {
		if matches(k, vm.filter) {
			out = append(out, k)
		}
	}
	return out
}

// KeptTotal returns the unfiltered number of kept conversations.
func (vm *ViewModel) KeptTotal() int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return len(vm.kept)
}

func matches(k match.KeptSession, filter string) bool {
	fields := append([]string{k.Counterpart.Name, k.LastMessagePreview}, k.Topics...)
	for _, f := range fields {
		if containsFold(f, filter) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
