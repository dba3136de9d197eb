package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI with an isolated config directory.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--log-level", "quiet"}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("LEARNBOT_STORAGE_PATH", filepath.Join(dir, "knowledge"))
	return dir
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "learnbot dev"))
}

func TestAsk_SeededStore(t *testing.T) {
	isolate(t)
	out, _, err := run(t, "", "--storage", "memory", "ask", "--store", "healthcare", "Where are you located?")
	require.NoError(t, err)
	assert.Equal(t, "We are located at 123 Health Street, Wellness City.\n", out)
}

func TestAsk_Unknown(t *testing.T) {
	isolate(t)
	_, errOut, err := run(t, "", "--storage", "memory", "ask", "--store", "healthcare", "Tell me a joke")
	assert.ErrorIs(t, err, errNoAnswer)
	assert.Contains(t, errOut, "don't know")
}

func TestHeadlessChat_LearnsAndPersists(t *testing.T) {
	isolate(t)
	in := "What is the copay?\n$20 for most visits.\nWhat is the copay?\nquit\n"
	out, _, err := run(t, in, "chat", "--headless", "--store", "healthcare")
	require.NoError(t, err)
	assert.Contains(t, out, "I don't know the answer. Can you teach me?")
	assert.Contains(t, out, "Thank you! I learned a new response.")
	assert.Equal(t, 1, strings.Count(out, "$20 for most visits."))

	// A fresh process sees the learned entry.
	out, _, err = run(t, "", "ask", "--store", "healthcare", "what is the copay")
	require.NoError(t, err)
	assert.Equal(t, "$20 for most visits.\n", out)
}

func TestHeadlessChat_Ephemeral(t *testing.T) {
	isolate(t)
	_, _, err := run(t, "Is parking free?\nyes\n", "--headless", "--ephemeral")
	require.NoError(t, err)

	_, _, err = run(t, "", "ask", "Is parking free?")
	assert.ErrorIs(t, err, errNoAnswer)
}

func TestImportExport(t *testing.T) {
	dir := isolate(t)
	faq := filepath.Join(dir, "faq.md")
	require.NoError(t, os.WriteFile(faq, []byte("Q: Do you offer telehealth?\nA: Yes, through the patient portal.\n"), 0644))

	out, _, err := run(t, "", "import", faq)
	require.NoError(t, err)
	assert.Contains(t, out, "Added 1 new entries to general")

	// Importing again adds nothing.
	out, _, err = run(t, "", "import", faq)
	require.NoError(t, err)
	assert.Contains(t, out, "Added 0 new entries")

	dest := filepath.Join(dir, "export.json")
	_, _, err = run(t, "", "export", dest)
	require.NoError(t, err)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"questions"`)
	assert.Contains(t, string(data), "Do you offer telehealth?")

	_, _, err = run(t, "", "export", filepath.Join(dir, "export.csv"))
	assert.ErrorContains(t, err, "unsupported export format")
}

func TestExplain(t *testing.T) {
	isolate(t)
	out, _, err := run(t, "", "--storage", "memory", "explain", "-s", "healthcare", "what are your operating hours")
	require.NoError(t, err)
	assert.Contains(t, out, `Match: "What are your operating hours?"`)
}

func TestStores(t *testing.T) {
	isolate(t)
	out, _, err := run(t, "", "stores")
	require.NoError(t, err)
	assert.Contains(t, out, "general (default)")
	assert.Contains(t, out, "healthcare")

	_, _, err = run(t, "", "stores", "add", "billing", "--description", "Billing questions")
	require.NoError(t, err)
	out, _, err = run(t, "", "stores")
	require.NoError(t, err)
	assert.Contains(t, out, "Billing questions")

	_, _, err = run(t, "", "stores", "add", "billing")
	assert.ErrorContains(t, err, "already exists")

	_, _, err = run(t, "", "stores", "add", "alias", "--key", "general")
	assert.ErrorContains(t, err, "already used by store 'general'")

	_, _, err = run(t, "", "stores", "remove", "billing")
	require.NoError(t, err)
	_, _, err = run(t, "", "stores", "remove", "healthcare")
	assert.ErrorContains(t, err, "built in")
}

func TestDoctor(t *testing.T) {
	isolate(t)
	out, _, err := run(t, "", "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "healthcare")
	assert.Contains(t, out, "OK")
}

func TestInvalidConfig(t *testing.T) {
	isolate(t)
	_, _, err := run(t, "", "--threshold", "1.5", "ask", "hi")
	assert.ErrorContains(t, err, "matching.threshold")

	_, _, err = run(t, "", "--storage", "floppy", "ask", "hi")
	assert.ErrorContains(t, err, "storage.type")
}
