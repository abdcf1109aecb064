package match

import "slices"

// validTransitions defines allowed stage changes. Every stage may jump to
// Chatting because resuming a kept conversation bypasses matching.
var validTransitions = map[Stage][]Stage{
	Selecting: {Matching, Chatting},
	Matching:  {Chatting, Selecting},
	Chatting:  {Minimized, Selecting, Chatting},
	Minimized: {Chatting, Selecting},
}

func canTransition(from, to Stage) bool {
	return slices.Contains(validTransitions[from], to)
}

// StageChange is the payload of bus.KindStageChanged.
type StageChange struct {
	SessionID string
	From      Stage
	To        Stage
}
