// Package eventlog captures structured shell events as newline
// delimited JSON so sessions can be audited and summarized offline.
package eventlog

// LogEntry is a single record in the event log.
type LogEntry struct {
	// TimestampMicros is the time of the event in microseconds since
	// the UNIX epoch.
	TimestampMicros int64 `json:"timestamp_micros,omitempty"`
	// SessionID ties the entry to one interactive session.
	SessionID string `json:"session_id,omitempty"`

	// At most one of the following is set.
	SessionStart *SessionStart `json:"session_start,omitempty"`
	SessionEnd   *SessionEnd   `json:"session_end,omitempty"`
	RunCommand   *RunCommand   `json:"run_command,omitempty"`
	RunBuiltin   *RunBuiltin   `json:"run_builtin,omitempty"`
	Panic        *Panic        `json:"panic,omitempty"`
}

// LogType is implemented by every event payload.
type LogType interface {
	attach(le *LogEntry)
}

// GetLogType returns the payload stored in the entry, or nil if the
// entry carries none.
func (le *LogEntry) GetLogType() LogType {
	switch {
	case le.SessionStart != nil:
		return le.SessionStart
	case le.SessionEnd != nil:
		return le.SessionEnd
	case le.RunCommand != nil:
		return le.RunCommand
	case le.RunBuiltin != nil:
		return le.RunBuiltin
	case le.Panic != nil:
		return le.Panic
	}
	return nil
}

// SessionStart reports a new interactive session.
type SessionStart struct {
	// Interactive is true when the session controls a terminal.
	Interactive bool `json:"interactive"`
	// Prompt the session greeted the user with.
	Prompt string `json:"prompt,omitempty"`
	// Pgid is the shell's process group.
	Pgid int `json:"pgid,omitempty"`
	// Username of the invoking user.
	Username string `json:"username,omitempty"`
}

func (e *SessionStart) attach(le *LogEntry) { le.SessionStart = e }

// SessionEnd reports the end of a session.
type SessionEnd struct{}

func (e *SessionEnd) attach(le *LogEntry) { le.SessionEnd = e }

// RunCommand reports an external command launched by the shell.
type RunCommand struct {
	// Command is the full argument vector as typed.
	Command []string `json:"command,omitempty"`
	// ResolvedCommandPath is the executable the name resolved to, empty
	// when resolution failed.
	ResolvedCommandPath string `json:"resolved_command_path,omitempty"`
	// Status is the exit status the shell observed.
	Status int `json:"status"`
	// Outcome describes how the command ended, in wait(2) terms.
	Outcome string `json:"outcome,omitempty"`
}

func (e *RunCommand) attach(le *LogEntry) { le.RunCommand = e }

// RunBuiltin reports a command handled inside the shell.
type RunBuiltin struct {
	Command []string `json:"command,omitempty"`
	Status  int      `json:"status"`
}

func (e *RunBuiltin) attach(le *LogEntry) { le.RunBuiltin = e }

// Panic reports a recovered crash.
type Panic struct {
	Context    string `json:"context,omitempty"`
	Stacktrace string `json:"stacktrace,omitempty"`
}

func (e *Panic) attach(le *LogEntry) { le.Panic = e }
