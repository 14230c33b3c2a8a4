// Package ttylog records and replays terminal sessions.
//
// Sessions are streams of timestamped i/o events. Sinks consume events
// one at a time, sources produce them, and middleware sinks compose for
// playback concerns like pacing.
package ttylog

import (
	"io"
	"sync"
	"time"
)

// FD identifies the stream an IO event belongs to.
type FD int

const (
	FDStdin FD = iota
	FDStdout
	FDStderr
)

// Entry is one recorded terminal event.
type Entry struct {
	// TimestampMicros is the event time in microseconds since the UNIX
	// epoch.
	TimestampMicros int64
	// IO is set for input and output events.
	IO *IO
	// Closed is true for the final event of a stream.
	Closed bool
}

// IO is a chunk of bytes moving through one of the session's streams.
type IO struct {
	FD   FD
	Data []byte
}

// LogSink receives log events.
type LogSink func(e *Entry) error

// LogSource adapts log readers.
type LogSource interface {
	// Next fetches the next available log entry. It returns io.EOF if
	// the source has no more log entries.
	Next() (*Entry, error)
}

// NewRealTimePlayback plays back the results in real-time.
// If maxSleep > 0, it's used as the maximum duration to pause.
func NewRealTimePlayback(maxSleep time.Duration, next LogSink) LogSink {
	var once sync.Once
	var prevTimeMicros int64

	return func(entry *Entry) error {
		once.Do(func() {
			prevTimeMicros = entry.TimestampMicros
		})

		delta := entry.TimestampMicros - prevTimeMicros
		prevTimeMicros = entry.TimestampMicros

		if maxSleep > 0 {
			sleepDuration := time.Duration(delta) * time.Microsecond
			if sleepDuration > maxSleep {
				sleepDuration = maxSleep
			}
			time.Sleep(sleepDuration)
		}

		return next(entry)
	}
}

// NewClientOutput writes stdout and stderr to the given writer.
func NewClientOutput(w io.Writer) LogSink {
	return func(entry *Entry) error {
		if entry.IO != nil && entry.IO.FD != FDStdin {
			if _, err := w.Write(entry.IO.Data); err != nil {
				return err
			}
		}
		return nil
	}
}

// Replay reads a stream of events to a callback.
func Replay(recording LogSource, callback LogSink) error {
	for {
		entry, err := recording.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if err := callback(entry); err != nil {
			return err
		}
	}
}
