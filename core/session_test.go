package core

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"testing"

	"github.com/abiosoft/readline"
	"github.com/jmorland/jcsh/core/config"
	"github.com/jmorland/jcsh/core/eventlog"
	"github.com/jmorland/jcsh/core/history"
	"github.com/jmorland/jcsh/core/ttylog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireTool(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

type scriptedLine struct {
	line string
	err  error
}

// scriptSource feeds a canned list of lines to the session.
type scriptSource struct {
	script []scriptedLine
	store  history.Store
	closed int
}

var _ LineSource = (*scriptSource)(nil)

func newScriptSource(lines ...string) *scriptSource {
	s := &scriptSource{store: history.NewMemoryStore(0)}
	for _, line := range lines {
		s.script = append(s.script, scriptedLine{line: line})
	}
	return s
}

func (s *scriptSource) ReadLine(prompt string) (string, error) {
	if len(s.script) == 0 {
		return "", io.EOF
	}
	next := s.script[0]
	s.script = s.script[1:]
	return next.line, next.err
}

func (s *scriptSource) Record(line string) error {
	return s.store.Append(line)
}

func (s *scriptSource) History() ([]history.Entry, error) {
	return s.store.Entries()
}

func (s *scriptSource) ClearHistory() error {
	return s.store.Clear()
}

func (s *scriptSource) Close() error {
	s.closed++
	return nil
}

func TestResolvePrompt(t *testing.T) {
	cases := map[string]struct {
		env    *string
		config *config.Configuration
		want   string
	}{
		"default": {
			want: "shell>",
		},
		"config": {
			config: &config.Configuration{Prompt: "cfg% "},
			want:   "cfg% ",
		},
		"env beats config": {
			env:    strPtr("env$ "),
			config: &config.Configuration{Prompt: "cfg% "},
			want:   "env$ ",
		},
		"empty env counts as set": {
			env:    strPtr(""),
			config: &config.Configuration{Prompt: "cfg% "},
			want:   "",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			t.Setenv(EnvPrompt, "placeholder")
			os.Unsetenv(EnvPrompt)
			if tc.env != nil {
				t.Setenv(EnvPrompt, *tc.env)
			}

			assert.Equal(t, tc.want, ResolvePrompt(tc.config))
		})
	}
}

func strPtr(s string) *string {
	return &s
}

func newTestSession(t *testing.T, opts SessionOptions) *Session {
	t.Helper()

	if opts.Input == nil {
		devNull, err := os.Open(os.DevNull)
		require.NoError(t, err)
		t.Cleanup(func() { devNull.Close() })
		opts.Input = devNull
	}

	session, err := NewSession(nil, opts)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func TestSessionRunScripted(t *testing.T) {
	requireTool(t, "echo")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	events := &bytes.Buffer{}

	session := newTestSession(t, SessionOptions{
		Stdout: stdout,
		Stderr: stderr,
		Events: eventlog.NewJSONLinesLogRecorder(events),
		Line:   newScriptSource("   ", "echo hello", "history", "exit", "echo never"),
	})

	assert.False(t, session.Interactive())
	assert.Equal(t, 0, session.Run())

	// The blank line is skipped, history includes itself, and nothing
	// past exit runs.
	assert.Equal(t, "hello\n1  echo hello\n2  history\n", stdout.String())
	assert.Empty(t, stderr.String())

	require.NoError(t, session.Close())

	var entries []*eventlog.LogEntry
	err := eventlog.ReadJSONLinesLog(bytes.NewReader(events.Bytes()), func(le *eventlog.LogEntry) {
		entries = append(entries, le)
	})
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.NotNil(t, entries[0].SessionStart)
	assert.NotNil(t, entries[1].RunCommand)
	assert.Equal(t, []string{"echo", "hello"}, entries[1].RunCommand.Command)
	assert.NotNil(t, entries[2].RunBuiltin)
	assert.Equal(t, []string{"history"}, entries[2].RunBuiltin.Command)
	assert.NotNil(t, entries[3].RunBuiltin)
	assert.Equal(t, []string{"exit"}, entries[3].RunBuiltin.Command)
	assert.NotNil(t, entries[4].SessionEnd)

	for _, entry := range entries {
		assert.Equal(t, entries[0].SessionID, entry.SessionID)
	}
}

func TestSessionRunEOF(t *testing.T) {
	session := newTestSession(t, SessionOptions{
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
		Line:   newScriptSource(),
	})

	assert.Equal(t, 0, session.Run())
}

func TestSessionRunInterrupt(t *testing.T) {
	source := newScriptSource()
	source.script = []scriptedLine{
		{line: "half-typed comman", err: readline.ErrInterrupt},
		{line: "exit"},
	}

	stdout := &bytes.Buffer{}
	session := newTestSession(t, SessionOptions{
		Stdout: stdout,
		Stderr: &bytes.Buffer{},
		Line:   source,
	})

	assert.Equal(t, 0, session.Run())

	// The interrupted line is discarded, not recorded.
	entries, err := source.History()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "exit", entries[0].Line)
}

func TestSessionCloseIdempotent(t *testing.T) {
	var closedEntries int
	sink := func(e *ttylog.Entry) error {
		if e.Closed {
			closedEntries++
		}
		return nil
	}

	session := newTestSession(t, SessionOptions{
		Stdout:     &bytes.Buffer{},
		Stderr:     &bytes.Buffer{},
		Transcript: sink,
		Line:       newScriptSource("exit"),
	})

	assert.Equal(t, 0, session.Run())

	require.NoError(t, session.Close())
	require.NoError(t, session.Close())
	assert.Equal(t, 1, closedEntries)
}

func TestSessionTranscriptRecordsShellIO(t *testing.T) {
	var entries []*ttylog.Entry
	sink := func(e *ttylog.Entry) error {
		entries = append(entries, e)
		return nil
	}

	session := newTestSession(t, SessionOptions{
		Stdout:     &bytes.Buffer{},
		Stderr:     &bytes.Buffer{},
		Transcript: sink,
		Line:       newScriptSource("history", "exit"),
	})

	assert.Equal(t, 0, session.Run())
	require.NoError(t, session.Close())

	var stdoutData []byte
	for _, entry := range entries {
		if entry.IO != nil && entry.IO.FD == ttylog.FDStdout {
			stdoutData = append(stdoutData, entry.IO.Data...)
		}
	}
	assert.Equal(t, "1  history\n", string(stdoutData))
}

func TestSessionRunUnknownCommand(t *testing.T) {
	stderr := &bytes.Buffer{}
	session := newTestSession(t, SessionOptions{
		Stdout: &bytes.Buffer{},
		Stderr: stderr,
		Line:   newScriptSource("no-such-command-anywhere", "exit"),
	})

	assert.Equal(t, 0, session.Run())
	assert.Equal(t, "no-such-command-anywhere: command not found\n", stderr.String())
}
