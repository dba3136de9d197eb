package knowledge

import (
	"encoding/json"

	"github.com/jeanpaul/learnbot/internal/schema"
)

// Entry is one learned question/answer pair.
type Entry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// KnowledgeBase is the ordered list of entries. Order matters: the first of
// several equally good matches wins.
type KnowledgeBase struct {
	Entries []Entry `json:"questions"`
}

// Clone returns a copy that shares nothing with kb.
func (kb KnowledgeBase) Clone() KnowledgeBase {
	out := KnowledgeBase{Entries: make([]Entry, len(kb.Entries))}
	copy(out.Entries, kb.Entries)
	return out
}

// Len is the number of entries.
func (kb KnowledgeBase) Len() int { return len(kb.Entries) }

// Encode serializes kb as {"questions":[{"question":..,"answer":..}]}.
func Encode(kb KnowledgeBase) ([]byte, error) {
	if kb.Entries == nil {
		kb.Entries = []Entry{}
	}
	return json.MarshalIndent(kb, "", "  ")
}

// Decode parses a persisted record. The record must satisfy
// schema.KnowledgeBase before it is unmarshaled.
func Decode(data []byte) (KnowledgeBase, error) {
	if err := schema.ValidateKnowledgeBase(data); err != nil {
		return KnowledgeBase{}, err
	}
	var kb KnowledgeBase
	if err := json.Unmarshal(data, &kb); err != nil {
		return KnowledgeBase{}, err
	}
	if kb.Entries == nil {
		kb.Entries = []Entry{}
	}
	return kb, nil
}
