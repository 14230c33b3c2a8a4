// Package core implements the interactive shell session: reading lines,
// dispatching builtins, and running everything else as foreground jobs.
package core

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/user"
	"strings"
	"sync"

	"github.com/abiosoft/readline"
	"github.com/jmorland/jcsh/core/argv"
	"github.com/jmorland/jcsh/core/config"
	"github.com/jmorland/jcsh/core/eventlog"
	"github.com/jmorland/jcsh/core/history"
	"github.com/jmorland/jcsh/core/jobctl"
	"github.com/jmorland/jcsh/core/tty"
	"github.com/jmorland/jcsh/core/ttylog"
	"golang.org/x/sys/unix"
)

const (
	EnvHome   = "HOME"
	EnvPrompt = "MY_PROMPT"

	DefaultPrompt = "shell>"
)

// ResolvePrompt picks the session prompt: the MY_PROMPT environment
// variable wins, then the configuration, then the stock prompt.
func ResolvePrompt(configuration *config.Configuration) string {
	if prompt, ok := os.LookupEnv(EnvPrompt); ok {
		return prompt
	}
	if configuration != nil && configuration.Prompt != "" {
		return configuration.Prompt
	}
	return DefaultPrompt
}

// SessionOptions carries the streams and sinks a Session is built from.
// Zero values fall back to the process's own streams and no-op sinks.
type SessionOptions struct {
	// Input is the terminal or stream the session reads from.
	Input *os.File
	// Stdout and Stderr receive shell and job output.
	Stdout io.Writer
	Stderr io.Writer

	// Transcript, if set, receives a recording of the shell's own I/O.
	Transcript ttylog.LogSink
	// Events receives structured logs of what the session runs.
	Events *eventlog.Logger
	// History persists command lines across sessions.
	History history.Store
	// Line overrides the readline-backed input; used by tests.
	Line LineSource
}

// Session is one run of the interactive shell.
type Session struct {
	// Line supplies input lines.
	Line LineSource
	// Jobs launches external commands as foreground jobs.
	Jobs *jobctl.Controller

	prompt      string
	interactive bool
	pgid        int

	stdout io.Writer
	stderr io.Writer

	terminal     *tty.Terminal
	dispositions *jobctl.AppliedDispositions
	events       *eventlog.SessionLogger

	quit      bool
	closeOnce sync.Once
	closeErr  error
	toClose   listCloser
}

// NewSession prepares the shell for interactive use. On a terminal this
// waits until the shell is in the foreground, shields it from the job
// control signals, moves it into its own process group, and takes
// ownership of the terminal.
func NewSession(configuration *config.Configuration, opts SessionOptions) (*Session, error) {
	input := opts.Input
	if input == nil {
		input = os.Stdin
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	events := opts.Events
	if events == nil {
		events = eventlog.NewNopLogger()
	}

	session := &Session{
		prompt: ResolvePrompt(configuration),
		events: events.NewSession(),
	}

	ok := false
	defer func() {
		if !ok {
			session.cleanup()
		}
	}()

	terminal := tty.New(input)
	session.interactive = terminal.IsTerminal()

	if session.interactive {
		// A shell started in the background must not touch the terminal
		// until it is moved to the foreground.
		if err := terminal.AwaitForeground(); err != nil {
			return nil, err
		}

		session.dispositions = jobctl.NewIgnoreTable().Apply()

		pid := os.Getpid()
		if err := unix.Setpgid(pid, pid); err != nil && unix.Getpgrp() != pid {
			return nil, fmt.Errorf("couldn't put the shell in its own process group: %w", err)
		}
		session.pgid = pid

		if err := terminal.SetForeground(pid); err != nil {
			return nil, err
		}
		session.terminal = terminal
		if err := terminal.SaveState(); err != nil {
			log.Printf("Error saving terminal state: %v", err)
		}
	} else {
		session.pgid = unix.Getpgrp()
	}

	// The transcript sees the shell's own streams only; jobs get the
	// real terminal so the kernel-side hand-off still works.
	var shellIn io.Reader = input
	session.stdout = stdout
	session.stderr = stderr
	if opts.Transcript != nil {
		recorder := ttylog.NewRecorder(input, stdout, stderr, opts.Transcript)
		shellIn = recorder.Stdin
		session.stdout = recorder.Stdout
		session.stderr = recorder.Stderr
		session.toClose = append(session.toClose, recorder)
	}

	if opts.Line != nil {
		session.Line = opts.Line
	} else {
		store := opts.History
		if store == nil {
			store = history.NewMemoryStore(0)
		}
		line, err := NewTerminalSource(shellIn, session.stdout, session.stderr, terminal.IsTerminal, store)
		if err != nil {
			return nil, err
		}
		session.Line = line
		session.toClose = append(session.toClose, line)
	}

	session.Jobs = &jobctl.Controller{
		TTY:       session.terminal,
		ShellPgid: session.pgid,
		Stdin:     input,
		Stdout:    stdout,
		Stderr:    stderr,
		Diag:      session.stderr,
		Events:    session.events,
	}

	session.events.Record(&eventlog.SessionStart{
		Interactive: session.interactive,
		Prompt:      session.prompt,
		Pgid:        session.pgid,
		Username:    username(),
	})

	ok = true
	return session, nil
}

// Interactive reports whether the session controls a terminal.
func (s *Session) Interactive() bool {
	return s.interactive
}

// Prompt returns the prompt shown before each line.
func (s *Session) Prompt() string {
	return s.prompt
}

// Run reads and executes lines until input ends or exit is called.
func (s *Session) Run() int {
	for !s.quit {
		line, err := s.Line.ReadLine(s.prompt)

		switch {
		case err == io.EOF:
			return 0 // Input closed, quit.

		case err == readline.ErrInterrupt:
			// Interrupt discards the pending line.
			continue

		case err != nil:
			log.Printf("Error readline: %v", err)
			continue
		}

		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue // empty line
		}

		if err := s.Line.Record(line); err != nil {
			log.Printf("Error recording history: %v", err)
		}

		tokens := argv.Tokenize(line)
		if len(tokens) == 0 {
			continue
		}

		if builtin, ok := AllBuiltins[tokens[0]]; ok {
			status := builtin.Main(s, tokens)
			err := s.events.Record(&eventlog.RunBuiltin{
				Command: tokens,
				Status:  status,
			})
			if err != nil {
				log.Print(err)
			}
			continue
		}

		s.Jobs.Run(tokens)
	}
	return 0
}

// Close restores the terminal and releases the session's resources.
// It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.events.Record(&eventlog.SessionEnd{})
		s.closeErr = s.cleanup()
	})
	return s.closeErr
}

func (s *Session) cleanup() error {
	lastErr := s.toClose.Close()
	s.toClose = nil

	if s.dispositions != nil {
		if err := s.dispositions.Close(); err != nil {
			lastErr = err
		}
		s.dispositions = nil
	}

	if s.terminal != nil {
		if err := s.terminal.SetForeground(s.pgid); err != nil {
			lastErr = err
		}
		if err := s.terminal.RestoreState(); err != nil {
			lastErr = err
		}
		s.terminal = nil
	}

	return lastErr
}

func username() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}

type listCloser []io.Closer

func (lc listCloser) Close() error {
	var lastErr error
	for _, v := range lc {
		if err := v.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}
