package headless

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/jeanpaul/learnbot/internal/engine"
)

// Options control the line runner's output.
type Options struct {
	// Prompt is printed before each question; empty disables it.
	Prompt string
	// Greeting is printed once before the first prompt.
	Greeting string
}

// Run reads one question per line from in and writes the bot's replies to
// out. When a question is unknown the teaching prompt is printed and the
// next line is taken as its answer. Warnings go to errOut. Run returns on
// EOF, the exit word, or when ctx is done.
func Run(ctx context.Context, eng *engine.Engine, in io.Reader, out, errOut io.Writer, opts Options) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if opts.Greeting != "" {
		fmt.Fprintln(out, opts.Greeting)
	}

	readLine := func() (string, bool) {
		if opts.Prompt != "" {
			fmt.Fprint(out, opts.Prompt)
		}
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimRight(scanner.Text(), "\r"), true
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, ok := readLine()
		if !ok {
			return scanner.Err()
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		outcome := eng.Submit(ctx, line)
		switch outcome.Kind {
		case engine.Exited:
			return nil

		case engine.Answered:
			fmt.Fprintln(out, outcome.Text)

		case engine.NeedsTeaching:
			fmt.Fprintln(out, outcome.Text)
			answer, ok := readLine()
			if !ok {
				// EOF while teaching counts as skipping.
				answer = ""
			}
			taught, err := eng.Teach(ctx, answer)
			if err != nil {
				return fmt.Errorf("teach: %w", err)
			}
			if taught.Warning != nil {
				fmt.Fprintf(errOut, "warning: %v\n", taught.Warning)
				log.WithError(taught.Warning).Debug("learned entry not persisted")
			}
			fmt.Fprintln(out, taught.Text)
			if !ok {
				return scanner.Err()
			}
		}
	}
}
