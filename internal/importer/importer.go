// Package importer bulk-loads question/answer pairs from spreadsheets, PDF
// and Markdown FAQs, knowledge-base JSON records and web pages.
package importer

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	log "github.com/sirupsen/logrus"

	"github.com/jeanpaul/learnbot/internal/knowledge"
)

type Options struct {
	// Render loads web pages in headless Chrome before extraction.
	Render bool
	// Client fetches web pages; nil uses http.DefaultClient.
	Client *http.Client
}

// Result reports one imported source.
type Result struct {
	Source  string
	Entries []knowledge.Entry
	Err     error
}

// IsURL reports whether source is an http(s) address.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Expand resolves glob patterns (including "**") to the files they match.
// URLs and plain paths pass through unchanged.
func Expand(sources []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	for _, src := range sources {
		if IsURL(src) || !strings.ContainsAny(src, "*?[{") {
			add(src)
			continue
		}
		matches, err := doublestar.FilepathGlob(src, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", src, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", src)
		}
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}

// Load reads the entries of one source, chosen by URL scheme or file
// extension.
func Load(ctx context.Context, source string, opts Options) ([]knowledge.Entry, error) {
	if IsURL(source) {
		markdown, err := FetchPage(ctx, opts.Client, source, opts.Render)
		if err != nil {
			return nil, err
		}
		return ParseFAQ(markdown), nil
	}

	switch ext := strings.ToLower(filepath.Ext(source)); ext {
	case ".xlsx", ".xlsm":
		return ReadSpreadsheet(source)
	case ".pdf":
		text, err := readPDFText(source)
		if err != nil {
			return nil, err
		}
		return ParseFAQ(text), nil
	case ".md", ".markdown", ".txt":
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, err
		}
		return ParseFAQ(string(data)), nil
	case ".json":
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, err
		}
		kb, err := knowledge.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		return kb.Entries, nil
	default:
		return nil, fmt.Errorf("unsupported source %q (want .xlsx, .pdf, .md, .txt, .json or a URL)", source)
	}
}

// LoadAll expands sources and loads each one. A failing source is reported
// in its Result and does not stop the others.
func LoadAll(ctx context.Context, sources []string, opts Options) ([]Result, error) {
	expanded, err := Expand(sources)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(expanded))
	for _, src := range expanded {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		entries, err := Load(ctx, src, opts)
		if err != nil {
			log.WithError(err).WithField("source", src).Warn("import failed")
		} else {
			log.WithFields(log.Fields{"source": src, "entries": len(entries)}).Debug("source read")
		}
		results = append(results, Result{Source: src, Entries: entries, Err: err})
	}
	return results, nil
}

// Into loads sources and appends their entries to store with a single
// save, skipping pairs the store already has.
func Into(ctx context.Context, store *knowledge.Store, sources []string, opts Options) (added int, results []Result, err error) {
	results, err = LoadAll(ctx, sources, opts)
	if err != nil {
		return 0, results, err
	}
	var all []knowledge.Entry
	for _, r := range results {
		all = append(all, r.Entries...)
	}
	added, err = store.AppendMany(ctx, all)
	return added, results, err
}
