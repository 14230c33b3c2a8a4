package core

import (
	"io"

	"github.com/abiosoft/readline"
	"github.com/jmorland/jcsh/core/history"
)

// LineSource supplies lines of input to a Session.
type LineSource interface {
	// ReadLine blocks for the next line of input. It returns io.EOF once
	// input is exhausted and readline.ErrInterrupt when the pending line
	// was discarded by an interrupt.
	ReadLine(prompt string) (string, error)
	// Record appends a line to the history list.
	Record(line string) error
	// History enumerates recorded lines, oldest first.
	History() ([]history.Entry, error)
	// ClearHistory discards all recorded lines.
	ClearHistory() error

	io.Closer
}

// TerminalSource is a LineSource with line editing and history recall.
type TerminalSource struct {
	Readline *readline.Instance
	store    history.Store
}

var _ LineSource = (*TerminalSource)(nil)

// NewTerminalSource builds a readline-backed LineSource. Recall is
// preloaded from whatever the store already holds.
func NewTerminalSource(stdin io.Reader, stdout, stderr io.Writer, isTerminal func() bool, store history.Store) (*TerminalSource, error) {
	cfg := &readline.Config{
		Stdin:          readline.NewCancelableStdin(stdin),
		Stdout:         stdout,
		Stderr:         stderr,
		FuncIsTerminal: isTerminal,

		// The session decides which lines count as history.
		DisableAutoSaveHistory: true,
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}

	if entries, err := store.Entries(); err == nil {
		for _, entry := range entries {
			rl.SaveHistory(entry.Line)
		}
	}

	return &TerminalSource{Readline: rl, store: store}, nil
}

func (t *TerminalSource) ReadLine(prompt string) (string, error) {
	t.Readline.SetPrompt(prompt)
	return t.Readline.Readline()
}

func (t *TerminalSource) Record(line string) error {
	if err := t.Readline.SaveHistory(line); err != nil {
		return err
	}
	return t.store.Append(line)
}

func (t *TerminalSource) History() ([]history.Entry, error) {
	return t.store.Entries()
}

func (t *TerminalSource) ClearHistory() error {
	t.Readline.Operation.ResetHistory()
	return t.store.Clear()
}

func (t *TerminalSource) Close() error {
	return t.Readline.Close()
}
