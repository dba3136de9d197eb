// Package explain reports why a question did or did not match a stored
// entry: the score, the edit distance and a word-level diff.
package explain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/jeanpaul/learnbot/internal/knowledge"
	"github.com/jeanpaul/learnbot/internal/similarity"
)

// maxCandidates is how many runner-up entries an Explanation lists.
const maxCandidates = 3

// Op is the kind of a word in a diff.
type Op int

const (
	Equal Op = iota
	Insert
	Delete
)

// WordOp is one word of a diff from the query to the stored question.
type WordOp struct {
	Op   Op
	Word string
}

// Candidate is a scored entry.
type Candidate struct {
	Index    int
	Question string
	Score    float64
}

type Explanation struct {
	Query     string
	Threshold float64
	Found     bool
	Match     knowledge.Match
	// Distance is the case-folded edit distance to the matched question, or
	// to the closest candidate when nothing matched.
	Distance   int
	Diff       []WordOp
	Candidates []Candidate
}

// Explain scores question against every entry of store.
func Explain(store *knowledge.Store, question string, threshold float64) Explanation {
	ex := Explanation{Query: question, Threshold: threshold}

	entries := store.Entries()
	for i, e := range entries {
		ex.Candidates = append(ex.Candidates, Candidate{
			Index:    i,
			Question: e.Question,
			Score:    similarity.Similarity(question, e.Question),
		})
	}
	sort.SliceStable(ex.Candidates, func(i, j int) bool {
		return ex.Candidates[i].Score > ex.Candidates[j].Score
	})
	if len(ex.Candidates) > maxCandidates {
		ex.Candidates = ex.Candidates[:maxCandidates]
	}

	target := ""
	if m, ok := store.FindBestMatch(question, threshold); ok {
		ex.Found = true
		ex.Match = m
		target = m.Entry.Question
	} else if len(ex.Candidates) > 0 {
		target = ex.Candidates[0].Question
	} else {
		return ex
	}

	ex.Distance = similarity.Distance(strings.ToLower(question), strings.ToLower(target))
	ex.Diff = WordDiff(question, target)
	return ex
}

// WordDiff aligns the words of from and to.
func WordDiff(from, to string) []WordOp {
	fromWords := strings.Fields(from)
	toWords := strings.Fields(to)
	switch {
	case len(fromWords) == 0:
		return wordOps(Insert, toWords)
	case len(toWords) == 0:
		return wordOps(Delete, fromWords)
	}
	a := joinLines(fromWords)
	b := joinLines(toWords)

	edits := myers.ComputeEdits(span.URIFromPath("query"), a, b)
	if len(edits) == 0 {
		return equalOps(fromWords)
	}
	unified := gotextdiff.ToUnified("query", "question", a, edits)

	var ops []WordOp
	next := 0
	for _, h := range unified.Hunks {
		start := h.FromLine - 1
		if start > next {
			ops = append(ops, equalOps(fromWords[next:start])...)
			next = start
		}
		for _, l := range h.Lines {
			word := strings.TrimSuffix(l.Content, "\n")
			switch l.Kind {
			case gotextdiff.Equal:
				ops = append(ops, WordOp{Op: Equal, Word: word})
				next++
			case gotextdiff.Delete:
				ops = append(ops, WordOp{Op: Delete, Word: word})
				next++
			case gotextdiff.Insert:
				ops = append(ops, WordOp{Op: Insert, Word: word})
			}
		}
	}
	if next < len(fromWords) {
		ops = append(ops, equalOps(fromWords[next:])...)
	}
	return ops
}

func joinLines(words []string) string {
	if len(words) == 0 {
		return ""
	}
	return strings.Join(words, "\n") + "\n"
}

func equalOps(words []string) []WordOp {
	return wordOps(Equal, words)
}

func wordOps(op Op, words []string) []WordOp {
	ops := make([]WordOp, 0, len(words))
	for _, w := range words {
		ops = append(ops, WordOp{Op: op, Word: w})
	}
	return ops
}

// FormatDiff renders ops inline, marking removed words [-like this-] and
// added words {+like this+}.
func FormatDiff(ops []WordOp) string {
	parts := make([]string, 0, len(ops))
	for _, op := range ops {
		switch op.Op {
		case Insert:
			parts = append(parts, "{+"+op.Word+"+}")
		case Delete:
			parts = append(parts, "[-"+op.Word+"-]")
		default:
			parts = append(parts, op.Word)
		}
	}
	return strings.Join(parts, " ")
}

// String is a plain-text report.
func (ex Explanation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %q\n", ex.Query)
	if ex.Found {
		fmt.Fprintf(&b, "Match: %q (entry #%d)\n", ex.Match.Entry.Question, ex.Match.Index+1)
		fmt.Fprintf(&b, "Score: %.3f (threshold %.2f)\n", ex.Match.Score, ex.Threshold)
		fmt.Fprintf(&b, "Answer: %s\n", ex.Match.Entry.Answer)
	} else {
		fmt.Fprintf(&b, "No entry reaches the threshold of %.2f\n", ex.Threshold)
	}
	if len(ex.Diff) > 0 {
		fmt.Fprintf(&b, "Edit distance: %d\n", ex.Distance)
		fmt.Fprintf(&b, "Diff: %s\n", FormatDiff(ex.Diff))
	}
	if len(ex.Candidates) > 0 {
		b.WriteString("Closest entries:\n")
		for _, c := range ex.Candidates {
			fmt.Fprintf(&b, "  %.3f  %s\n", c.Score, c.Question)
		}
	}
	return b.String()
}
