package match

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Chooser returns an index in [0, n). It must not be called with n <= 0.
type Chooser func(n int) int

// RandomChooser picks uniformly at random.
func RandomChooser(n int) int { return rand.IntN(n) }

// Roster holds the fixed identities and lines the simulated buddy draws from.
type Roster struct {
	Identities []Identity
	Responses  []string
	// Opening is formatted with the joined topic list.
	Opening string
}

// DefaultRoster returns the built-in roster.
func DefaultRoster() *Roster {
	return &Roster{
		Identities: []Identity{
			{Name: "Quiet Owl", Icon: "🦉"},
			{Name: "Curious Fox", Icon: "🦊"},
			{Name: "Sleepy Panda", Icon: "🐼"},
			{Name: "Brave Otter", Icon: "🦦"},
			{Name: "Gentle Koala", Icon: "🐨"},
			{Name: "Swift Falcon", Icon: "🦅"},
		},
		Responses: []string{
			"That's so interesting! Tell me more.",
			"Haha, I totally get that.",
			"I've been feeling the same way lately.",
			"What got you into that?",
			"Same here! This semester has been a lot.",
			"Do you have any tips for staying focused?",
			"Honestly that made my day, thanks for sharing.",
		},
		Opening: "Hey there! Looks like we're both into %s. How's your day going?",
	}
}

// Topics is the catalogue of topics offered on the selection screen.
var Topics = []string{
	"Music", "Gaming", "Study Tips", "Sports", "Movies",
	"Books", "Art", "Tech", "Travel", "Food",
}

func (r *Roster) greeting(topics []string) string {
	if !strings.Contains(r.Opening, "%s") {
		return r.Opening
	}
	return fmt.Sprintf(r.Opening, joinTopics(topics))
}

func joinTopics(topics []string) string {
	switch len(topics) {
	case 0:
		return "studying"
	case 1:
		return topics[0]
	default:
		return strings.Join(topics[:len(topics)-1], ", ") + " and " + topics[len(topics)-1]
	}
}
