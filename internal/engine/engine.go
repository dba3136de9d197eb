// Package engine runs the learn-by-asking conversation loop over a
// knowledge.Store. A turn is Submit, optionally followed by Teach when the
// question was not recognized.
package engine

import (
	"context"
	"errors"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/jeanpaul/learnbot/internal/config"
	"github.com/jeanpaul/learnbot/internal/knowledge"
)

// ErrNothingToTeach is returned by Teach when no question is waiting for an
// answer.
var ErrNothingToTeach = errors.New("engine: no question is waiting to be taught")

// OutcomeKind is how a turn ended.
type OutcomeKind int

const (
	Exited OutcomeKind = iota
	Answered
	NeedsTeaching
	Learned
	Skipped
)

func (k OutcomeKind) String() string {
	switch k {
	case Exited:
		return "exited"
	case Answered:
		return "answered"
	case NeedsTeaching:
		return "needs_teaching"
	case Learned:
		return "learned"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Outcome is the result of Submit or Teach.
type Outcome struct {
	Kind OutcomeKind
	// Text is what the bot says: the stored answer, the teaching prompt,
	// or the learned/skipped confirmation. Empty for Exited.
	Text string
	// Question is the user input the turn was about.
	Question string
	// Match is set for Answered.
	Match *knowledge.Match
	// Warning carries a persistence failure that did not stop the turn.
	Warning error
}

// Options tune matching and the canned replies.
type Options struct {
	Threshold      float64
	ExitWord       string
	SkipWord       string
	LearnedMessage string
	SkippedMessage string
	TeachPrompt    string
}

func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultConfig())
}

// OptionsFromConfig maps the matching and messages sections of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Threshold:      cfg.Matching.Threshold,
		ExitWord:       cfg.Matching.ExitWord,
		SkipWord:       cfg.Matching.SkipWord,
		LearnedMessage: cfg.Messages.Learned,
		SkippedMessage: cfg.Messages.Skipped,
		TeachPrompt:    cfg.Messages.TeachPrompt,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Threshold <= 0 {
		o.Threshold = d.Threshold
	}
	if o.ExitWord == "" {
		o.ExitWord = d.ExitWord
	}
	if o.SkipWord == "" {
		o.SkipWord = d.SkipWord
	}
	if o.LearnedMessage == "" {
		o.LearnedMessage = d.LearnedMessage
	}
	if o.SkippedMessage == "" {
		o.SkippedMessage = d.SkippedMessage
	}
	if o.TeachPrompt == "" {
		o.TeachPrompt = d.TeachPrompt
	}
	return o
}

// Engine processes one turn at a time against a shared store.
type Engine struct {
	mu         sync.Mutex
	store      *knowledge.Store
	opts       Options
	transcript *Transcript

	pending    string
	hasPending bool
}

func New(store *knowledge.Store, opts Options) *Engine {
	return &Engine{
		store:      store,
		opts:       opts.withDefaults(),
		transcript: NewTranscript(),
	}
}

func (e *Engine) Store() *knowledge.Store { return e.store }

func (e *Engine) Options() Options { return e.opts }

func (e *Engine) Transcript() *Transcript { return e.transcript }

// Submit handles one user message. A question still waiting for Teach is
// dropped.
func (e *Engine) Submit(_ context.Context, text string) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.hasPending {
		log.WithField("question", e.pending).Debug("pending question abandoned")
	}
	e.pending, e.hasPending = "", false

	e.transcript.add(User, text)

	if e.isExit(text) {
		return Outcome{Kind: Exited, Question: text}
	}

	m, ok := e.store.FindBestMatch(text, e.opts.Threshold)
	if ok {
		e.transcript.add(Bot, m.Entry.Answer)
		log.WithFields(log.Fields{"store": e.store.Key(), "score": m.Score}).Debug("answered")
		return Outcome{Kind: Answered, Text: m.Entry.Answer, Question: text, Match: &m}
	}

	e.pending, e.hasPending = text, true
	return Outcome{Kind: NeedsTeaching, Text: e.opts.TeachPrompt, Question: text}
}

// Teach answers the pending question. An empty answer or exactly the skip
// word, in any case, leaves the knowledge base untouched; anything else is
// stored verbatim.
func (e *Engine) Teach(ctx context.Context, answer string) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.hasPending {
		return Outcome{}, ErrNothingToTeach
	}
	question := e.pending
	e.pending, e.hasPending = "", false

	if e.isSkip(answer) {
		e.transcript.add(Bot, e.opts.SkippedMessage)
		return Outcome{Kind: Skipped, Text: e.opts.SkippedMessage, Question: question}, nil
	}

	out := Outcome{Kind: Learned, Text: e.opts.LearnedMessage, Question: question}
	if err := e.store.Append(ctx, knowledge.Entry{Question: question, Answer: answer}); err != nil {
		out.Warning = err
	}
	e.transcript.add(Bot, e.opts.LearnedMessage)
	return out, nil
}

// Pending returns the question waiting for Teach, if any.
func (e *Engine) Pending() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending, e.hasPending
}

func (e *Engine) isExit(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), e.opts.ExitWord)
}

func (e *Engine) isSkip(answer string) bool {
	return answer == "" || strings.EqualFold(answer, e.opts.SkipWord)
}
