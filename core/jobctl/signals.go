package jobctl

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// JobSignals are the signals whose dispositions job control manages:
// the keyboard interrupt family and the terminal stop/access family.
var JobSignals = []os.Signal{
	unix.SIGINT,
	unix.SIGQUIT,
	unix.SIGTSTP,
	unix.SIGTTIN,
	unix.SIGTTOU,
}

// Disposition is what a process does when a job signal arrives.
type Disposition int

const (
	// Default leaves the signal's native action in place.
	Default Disposition = iota
	// Ignore discards the signal.
	Ignore
)

// DispositionTable assigns a Disposition to every job signal.
type DispositionTable map[os.Signal]Disposition

// NewIgnoreTable returns the table an interactive shell runs under:
// every job signal ignored, so keyboard signals aimed at the foreground
// child never land on the shell itself.
func NewIgnoreTable() DispositionTable {
	table := make(DispositionTable, len(JobSignals))
	for _, sig := range JobSignals {
		table[sig] = Ignore
	}
	return table
}

// AppliedDispositions undoes an Apply.
type AppliedDispositions struct {
	ch   chan os.Signal
	done chan struct{}
}

// Apply installs the table on the current process.
//
// Ignore subscribes the signal and discards deliveries rather than
// installing SIG_IGN: an ignored signal survives exec, and children
// must start with every job signal back at its default action. A caught
// signal reverts during exec, so draining keeps the shell immune
// without tainting children.
func (dt DispositionTable) Apply() *AppliedDispositions {
	var ignored, defaulted []os.Signal
	for _, sig := range JobSignals {
		if dt[sig] == Ignore {
			ignored = append(ignored, sig)
		} else {
			defaulted = append(defaulted, sig)
		}
	}

	if len(defaulted) > 0 {
		signal.Reset(defaulted...)
	}

	applied := &AppliedDispositions{
		ch:   make(chan os.Signal, 16),
		done: make(chan struct{}),
	}
	if len(ignored) > 0 {
		signal.Notify(applied.ch, ignored...)
	}

	go func() {
		defer close(applied.done)
		for range applied.ch {
		}
	}()

	return applied
}

// Close restores default handling for every signal Apply subscribed.
func (a *AppliedDispositions) Close() error {
	signal.Stop(a.ch)
	close(a.ch)
	<-a.done
	return nil
}
