// Package knowledge holds the learned question/answer pairs of one chatbot
// and persists them through a storage.Backend.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/jeanpaul/learnbot/internal/similarity"
	"github.com/jeanpaul/learnbot/internal/storage"
)

// DefaultThreshold is the minimum similarity a stored question needs to
// count as a match.
const DefaultThreshold = 0.6

// ErrDetached is the cause of save failures after the stored record could
// not be read. Reload the store to write again.
var ErrDetached = errors.New("storage was unreadable at load; changes are kept in memory only")

// CorruptKey is where an unparseable record is copied before it is first
// overwritten.
func CorruptKey(key string) string { return key + ".corrupt" }

// Match is the result of a successful lookup.
type Match struct {
	Entry Entry
	Score float64
	// Index is the entry's position in insertion order.
	Index int
}

// Store is an in-memory knowledge base bound to one persistence key.
type Store struct {
	mu      sync.RWMutex
	key     string
	backend storage.Backend
	kb      KnowledgeBase
	log     *log.Entry

	// detached is set when the stored record could not be read; writes
	// then stay in memory so the unread record is not replaced.
	detached bool
	// corrupt holds an unparseable record until it has been backed up.
	corrupt []byte
}

// NewStore creates an empty store. Call Load to pick up prior state.
func NewStore(key string, backend storage.Backend) *Store {
	return &Store{
		key:     key,
		backend: backend,
		kb:      KnowledgeBase{Entries: []Entry{}},
		log:     log.WithFields(log.Fields{"store": key, "backend": backend.Name()}),
	}
}

func (s *Store) Key() string { return s.key }

// Load reads the stored record. A missing record yields def. When the
// record cannot be read or parsed, def is used and the error describes why;
// the store stays usable either way.
func (s *Store) Load(ctx context.Context, def KnowledgeBase) (KnowledgeBase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.corrupt = nil
	kb, err := s.read(ctx, def)
	s.kb = kb.Clone()

	var perr *PersistenceError
	s.detached = errors.As(err, &perr)
	if s.detached {
		s.log.Warn("storage unreadable; changes will be kept in memory only")
	}
	if err != nil {
		s.log.WithError(err).Warn("using default knowledge base")
	} else {
		s.log.WithField("entries", kb.Len()).Debug("knowledge base loaded")
	}
	return kb, err
}

func (s *Store) read(ctx context.Context, def KnowledgeBase) (KnowledgeBase, error) {
	data, err := s.backend.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return def.Clone(), nil
		}
		return def.Clone(), &PersistenceError{Key: s.key, Op: "load", Err: err}
	}
	kb, err := Decode(data)
	if err != nil {
		s.corrupt = data
		return def.Clone(), &MalformedDataError{Key: s.key, Err: err}
	}
	return kb, nil
}

// Save overwrites the stored record with kb. kb becomes the in-memory
// state even when the write fails.
func (s *Store) Save(ctx context.Context, kb KnowledgeBase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.kb = kb.Clone()
	return s.persist(ctx)
}

// persist writes s.kb. Callers hold s.mu.
func (s *Store) persist(ctx context.Context) error {
	if s.detached {
		return &PersistenceError{Key: s.key, Op: "save", Err: ErrDetached}
	}
	if s.corrupt != nil {
		if err := s.backend.Put(ctx, CorruptKey(s.key), s.corrupt); err != nil {
			s.log.WithError(err).Warn("malformed record not backed up; leaving it in place")
			return &PersistenceError{Key: s.key, Op: "save", Err: fmt.Errorf("back up malformed record: %w", err)}
		}
		s.log.WithField("backup", CorruptKey(s.key)).Warn("malformed record backed up before overwrite")
		s.corrupt = nil
	}

	data, err := Encode(s.kb)
	if err != nil {
		return &PersistenceError{Key: s.key, Op: "save", Err: err}
	}
	if err := s.backend.Put(ctx, s.key, data); err != nil {
		s.log.WithError(err).Warn("knowledge base not saved; continuing in memory")
		return &PersistenceError{Key: s.key, Op: "save", Err: err}
	}
	s.log.WithField("entries", s.kb.Len()).Debug("knowledge base saved")
	return nil
}

// FindBestMatch scans the entries in insertion order and returns the
// highest-scoring one whose score reaches threshold. Ties keep the earlier
// entry.
func (s *Store) FindBestMatch(question string, threshold float64) (Match, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best := Match{Index: -1}
	for i, e := range s.kb.Entries {
		score := similarity.Similarity(question, e.Question)
		if score > best.Score && score >= threshold {
			best = Match{Entry: e, Score: score, Index: i}
		}
	}
	if best.Index < 0 {
		return Match{}, false
	}
	return best, true
}

// Append adds e and saves. On a save failure e is still kept in memory and
// a *PersistenceError is returned.
func (s *Store) Append(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.kb.Entries = append(s.kb.Entries, e)
	s.log.WithField("question", e.Question).Info("learned new entry")
	return s.persist(ctx)
}

// AppendMany adds every entry that is not already stored as an identical
// pair, then saves once. It returns how many entries were added.
func (s *Store) AppendMany(ctx context.Context, entries []Entry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[Entry]struct{}, len(s.kb.Entries)+len(entries))
	for _, e := range s.kb.Entries {
		seen[e] = struct{}{}
	}

	added := 0
	for _, e := range entries {
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		s.kb.Entries = append(s.kb.Entries, e)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	s.log.WithField("added", added).Info("imported entries")
	return added, s.persist(ctx)
}

// Entries returns a copy of the entries in insertion order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kb.Clone().Entries
}

// Snapshot returns a copy of the whole knowledge base.
func (s *Store) Snapshot() KnowledgeBase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kb.Clone()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.kb.Entries)
}
