package jobctl

import (
	"fmt"
	"syscall"
)

// Conventional statuses for commands that never ran, matching what sh
// reports for the same failures.
const (
	// StatusNotFound is returned when a command name resolves to nothing.
	StatusNotFound = 127
	// StatusNoPermission is returned when a command resolves to a file
	// that cannot be executed.
	StatusNoPermission = 126
	// StatusSpawnFailed is returned when the process could not be
	// created at all.
	StatusSpawnFailed = 254
)

// Status is the decoded outcome of a child process state change.
type Status struct {
	// Code is the exit status the shell observes. Signal deaths use the
	// 128+signal convention. A Code of -1 means the outcome could not
	// be decoded.
	Code int
	// Exited is true when the child called exit.
	Exited bool
	// Signaled is true when a signal terminated the child; Signal says
	// which.
	Signaled bool
	// Stopped is true when the child was stopped, not reaped; Signal
	// says which signal stopped it.
	Stopped bool
	// Continued is true when a stopped child resumed.
	Continued bool
	// Signal is valid when Signaled or Stopped is set.
	Signal syscall.Signal
}

// Exit builds the Status of a command that finished, or never started,
// with the given code.
func Exit(code int) Status {
	return Status{Exited: true, Code: code}
}

// DecodeWait translates a raw wait status.
func DecodeWait(ws syscall.WaitStatus) Status {
	switch {
	case ws.Exited():
		return Status{Exited: true, Code: ws.ExitStatus()}
	case ws.Signaled():
		return Status{Signaled: true, Signal: ws.Signal(), Code: 128 + int(ws.Signal())}
	case ws.Stopped():
		return Status{Stopped: true, Signal: ws.StopSignal(), Code: 128 + int(ws.StopSignal())}
	case ws.Continued():
		return Status{Continued: true}
	}
	return Status{Code: -1}
}

// String renders the status the way wait(2) describes it.
func (s Status) String() string {
	switch {
	case s.Exited:
		return fmt.Sprintf("exited with status %d", s.Code)
	case s.Signaled:
		return fmt.Sprintf("terminated by signal %d (%v)", int(s.Signal), s.Signal)
	case s.Stopped:
		return fmt.Sprintf("stopped by signal %d (%v)", int(s.Signal), s.Signal)
	case s.Continued:
		return "resumed by delivery of SIGCONT"
	}
	return "unknown wait status"
}
