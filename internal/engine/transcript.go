package engine

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sender identifies who spoke a turn.
type Sender int

const (
	User Sender = iota
	Bot
)

func (s Sender) String() string {
	switch s {
	case User:
		return "user"
	case Bot:
		return "bot"
	default:
		return "unknown"
	}
}

// MarshalText lets Sender serialize as "user"/"bot" in JSON.
func (s Sender) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Turn is one displayed message.
type Turn struct {
	Sender  Sender    `json:"sender"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Transcript is the display history of one session. It is never persisted
// with the knowledge base.
type Transcript struct {
	mu      sync.RWMutex
	id      string
	started time.Time
	turns   []Turn
}

func NewTranscript() *Transcript {
	return &Transcript{
		id:      uuid.New().String(),
		started: time.Now(),
	}
}

// ID is the session identifier.
func (t *Transcript) ID() string { return t.id }

func (t *Transcript) Started() time.Time { return t.started }

func (t *Transcript) add(sender Sender, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns = append(t.turns, Turn{Sender: sender, Message: msg, At: time.Now()})
}

// Turns returns a copy of the recorded turns in order.
func (t *Transcript) Turns() []Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Markdown renders the transcript for export.
func (t *Transcript) Markdown(title string) string {
	var b strings.Builder
	if title == "" {
		title = "Conversation"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- Session: `%s`\n", t.id)
	fmt.Fprintf(&b, "- Started: %s\n\n", t.started.Format(time.RFC3339))

	for _, turn := range t.Turns() {
		who := "**You**"
		if turn.Sender == Bot {
			who = "**Bot**"
		}
		fmt.Fprintf(&b, "%s: %s\n\n", who, turn.Message)
	}
	return b.String()
}
