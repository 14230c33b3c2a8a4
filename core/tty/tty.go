//go:build linux

// Package tty handles controlling-terminal ownership for job control.
//
// A Terminal wraps the descriptor the shell shares with its children
// and exposes the foreground process group operations the session and
// job controller negotiate with: who owns the terminal, handing it off,
// and reclaiming it.
package tty

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Terminal is a handle on a controlling terminal.
type Terminal struct {
	file  *os.File
	fd    int
	saved *term.State
}

// New wraps an already open terminal file, typically os.Stdin.
func New(f *os.File) *Terminal {
	return &Terminal{file: f, fd: int(f.Fd())}
}

// Fd returns the underlying descriptor.
func (t *Terminal) Fd() int {
	return t.fd
}

// IsTerminal reports whether the descriptor is attached to a terminal.
func (t *Terminal) IsTerminal() bool {
	return term.IsTerminal(t.fd)
}

// Pgrp returns the terminal's current foreground process group.
func (t *Terminal) Pgrp() (int, error) {
	pgrp, err := unix.IoctlGetInt(t.fd, unix.TIOCGPGRP)
	if err != nil {
		return 0, fmt.Errorf("tcgetpgrp: %w", err)
	}
	return pgrp, nil
}

// SetForeground makes pgid the terminal's foreground process group.
//
// SIGTTOU is masked on the calling thread for the duration: the shell
// calls this exactly when it does not own the terminal, and an unmasked
// tcsetpgrp from a background group stops the caller instead of
// completing.
func (t *Terminal) SetForeground(pgid int) error {
	unblock, err := blockSIGTTOU()
	if err != nil {
		return fmt.Errorf("tcsetpgrp: mask SIGTTOU: %w", err)
	}
	defer unblock()

	if err := unix.IoctlSetPointerInt(t.fd, unix.TIOCSPGRP, pgid); err != nil {
		return fmt.Errorf("tcsetpgrp: %w", err)
	}
	return nil
}

// AwaitForeground blocks until the caller's process group owns the
// terminal.
//
// While another group holds it the caller's group is stopped with
// SIGTTIN, the way the line discipline parks any background reader, and
// rechecks when resumed. Callers must invoke this before changing any
// signal dispositions so the stop actually takes effect.
func (t *Terminal) AwaitForeground() error {
	for {
		pgrp, err := t.Pgrp()
		if err != nil {
			return err
		}
		self := unix.Getpgrp()
		if pgrp == self {
			return nil
		}
		if err := unix.Kill(-self, unix.SIGTTIN); err != nil {
			return fmt.Errorf("stop until foreground: %w", err)
		}
	}
}

// SaveState snapshots the terminal attributes for later restoration.
func (t *Terminal) SaveState() error {
	state, err := term.GetState(t.fd)
	if err != nil {
		return fmt.Errorf("tcgetattr: %w", err)
	}
	t.saved = state
	return nil
}

// RestoreState reapplies the attributes captured by SaveState, if any.
func (t *Terminal) RestoreState() error {
	if t.saved == nil {
		return nil
	}
	if err := term.Restore(t.fd, t.saved); err != nil {
		return fmt.Errorf("tcsetattr: %w", err)
	}
	return nil
}
