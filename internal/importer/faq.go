package importer

import (
	"regexp"
	"strings"

	"github.com/jeanpaul/learnbot/internal/knowledge"
)

var (
	markerRe  = regexp.MustCompile(`(?i)^\s*(?:[-*]\s+)?(?:\*\*)?(q|question|a|answer)\s*:\s*(?:\*\*)?\s*(.*)$`)
	headingRe = regexp.MustCompile(`^\s{0,3}#{1,6}\s+(.+?)\s*#*\s*$`)
)

// ParseFAQ extracts question/answer pairs from plain text or Markdown.
//
// Text with "Q:"/"A:" (or "Question:"/"Answer:") markers is read pair by
// pair. Otherwise every Markdown heading is a question and the text under
// it is the answer; when some headings end in "?", only those are used.
// Pairs missing either side are dropped.
func ParseFAQ(text string) []knowledge.Entry {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	for _, l := range lines {
		if m := markerRe.FindStringSubmatch(l); m != nil && isQuestionMarker(m[1]) {
			return parseMarkers(lines)
		}
	}
	return parseHeadings(lines)
}

func isQuestionMarker(s string) bool {
	s = strings.ToLower(s)
	return s == "q" || s == "question"
}

type pairBuilder struct {
	entries  []knowledge.Entry
	question []string
	answer   []string
}

func (p *pairBuilder) flush() {
	q := strings.Join(strings.Fields(strings.Join(p.question, " ")), " ")
	a := strings.TrimSpace(strings.Join(p.answer, "\n"))
	if q != "" && a != "" {
		p.entries = append(p.entries, knowledge.Entry{Question: q, Answer: a})
	}
	p.question, p.answer = nil, nil
}

func parseMarkers(lines []string) []knowledge.Entry {
	var p pairBuilder
	inAnswer := false
	for _, l := range lines {
		if m := markerRe.FindStringSubmatch(l); m != nil {
			if isQuestionMarker(m[1]) {
				p.flush()
				p.question = []string{m[2]}
				inAnswer = false
			} else {
				p.answer = []string{m[2]}
				inAnswer = true
			}
			continue
		}
		switch {
		case inAnswer:
			p.answer = append(p.answer, l)
		case p.question != nil && strings.TrimSpace(l) != "":
			p.question = append(p.question, l)
		}
	}
	p.flush()
	return p.entries
}

func parseHeadings(lines []string) []knowledge.Entry {
	type section struct {
		heading string
		body    []string
	}
	var sections []section
	onlyQuestions := false
	for _, l := range lines {
		if m := headingRe.FindStringSubmatch(l); m != nil {
			h := strings.TrimSpace(m[1])
			if strings.HasSuffix(h, "?") {
				onlyQuestions = true
			}
			sections = append(sections, section{heading: h})
			continue
		}
		if len(sections) > 0 {
			last := &sections[len(sections)-1]
			last.body = append(last.body, l)
		}
	}

	var p pairBuilder
	for _, s := range sections {
		if onlyQuestions && !strings.HasSuffix(s.heading, "?") {
			continue
		}
		p.question = []string{s.heading}
		p.answer = s.body
		p.flush()
	}
	return p.entries
}
