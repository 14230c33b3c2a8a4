package eventlog

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	Sessions       int        `json:"sessions"`
	InvalidEntries StrCounter `json:"unknown_log_entries,omitempty"`

	RunCommand RunCommandReport `json:"run_command_report"`
	Builtin    BuiltinReport    `json:"builtin_report"`

	// Commands that ended with a non-zero status, keyed by name and the
	// wait(2) outcome.
	Failures *PathCounter `json:"failures"`

	Panics PanicReport `json:"panic_report"`
}

func (r *Report) Update(le *LogEntry) {
	r.LogEntries++

	switch event := le.GetLogType().(type) {
	case *SessionStart:
		r.Sessions++
	case *SessionEnd:
		// Ignore
	case *RunCommand:
		r.RunCommand.update(event)
		if event.Status != 0 {
			if r.Failures == nil {
				r.Failures = NewPathCounter("command", "outcome")
			}
			r.Failures.Increment(commandName(event.Command), event.Outcome)
		}
	case *RunBuiltin:
		r.Builtin.update(event)
	case *Panic:
		r.Panics.update(event)
	default:
		r.InvalidEntries.Increment(fmt.Sprintf("%T", event))
	}
}

type RunCommandReport struct {
	// Paths commands resolved to.
	ResolvedCommandPaths StrCounter `json:"resolved_command_paths"`
	// Names of commands as typed.
	CommandNames StrCounter `json:"command_names"`
	// Observed exit statuses.
	Statuses StrCounter `json:"statuses"`
}

func (r *RunCommandReport) update(rc *RunCommand) {
	if rc.ResolvedCommandPath != "" {
		r.ResolvedCommandPaths.Increment(rc.ResolvedCommandPath)
	}
	if name := commandName(rc.Command); name != "" {
		r.CommandNames.Increment(name)
	}
	r.Statuses.Increment(fmt.Sprintf("%d", rc.Status))
}

type BuiltinReport struct {
	CommandNames StrCounter `json:"command_names"`
	Statuses     StrCounter `json:"statuses"`
}

func (r *BuiltinReport) update(rb *RunBuiltin) {
	if name := commandName(rb.Command); name != "" {
		r.CommandNames.Increment(name)
	}
	r.Statuses.Increment(fmt.Sprintf("%d", rb.Status))
}

type PanicReport struct {
	Contexts []string `json:"contexts"`
}

func (r *PanicReport) update(p *Panic) {
	r.Contexts = append(r.Contexts, p.Context)
}

func commandName(command []string) string {
	if len(command) == 0 {
		return ""
	}
	return command[0]
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Count returns the tally for the given key.
func (s *StrCounter) Count(key string) int {
	return s.internal[key]
}

// MarshalJSON implements a custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts tuples of strings.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// MarshalJSON implements a custom JSON marshaler.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	var out []Count
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
