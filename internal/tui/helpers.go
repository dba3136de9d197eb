package tui

import (
	"fmt"
	"strings"

	"github.com/jeanpaul/learnbot/internal/engine"
	"github.com/jeanpaul/learnbot/internal/knowledge"
)

func helpText(opts engine.Options) string {
	var b strings.Builder
	b.WriteString(SubtitleStyle.Render("Commands") + "\n")
	b.WriteString(strings.Repeat("─", 40) + "\n")
	for _, c := range slashCommands {
		it := c.(item)
		b.WriteString(fmt.Sprintf("  %-10s %s\n", it.title, it.desc))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Type '%s' to leave. When I ask to be taught, answer or type '%s'.\n", opts.ExitWord, opts.SkipWord))
	b.WriteString(fmt.Sprintf("Questions match at %.0f%% similarity or better.", opts.Threshold*100))
	return b.String()
}

// formatEntries lists up to limit entries, newest last.
func formatEntries(entries []knowledge.Entry, limit int) string {
	if len(entries) == 0 {
		return "Nothing learned yet."
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d entries\n", len(entries)))
	b.WriteString(strings.Repeat("─", 40) + "\n")

	start := 0
	if limit > 0 && len(entries) > limit {
		start = len(entries) - limit
		b.WriteString(fmt.Sprintf("  ... %d earlier entries not shown\n", start))
	}
	for i := start; i < len(entries); i++ {
		b.WriteString(fmt.Sprintf("%3d. Q: %s\n     A: %s\n", i+1, truncate(entries[i].Question, 70), truncate(entries[i].Answer, 70)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
