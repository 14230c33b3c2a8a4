package ttylog

import (
	"io"
	"log"
	"sync"
	"time"
)

// Recorder tees traffic on a terminal's streams to a LogSink.
//
// Wrap the shell's own streams with Stdin/Stdout/Stderr; anything read or
// written through the wrappers is forwarded to the sink with a timestamp.
type Recorder struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	mutex  sync.Mutex
	output LogSink
}

func (r *Recorder) record(fd FD, data []byte) {
	eventTime := time.Now()
	r.mutex.Lock()
	err := r.output(&Entry{
		TimestampMicros: eventTime.UnixMicro(),
		IO: &IO{
			FD:   fd,
			Data: data,
		},
	})
	r.mutex.Unlock()
	if err != nil {
		log.Print(err)
	}
}

// Close emits a final entry marking the end of the recording.
func (r *Recorder) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.output(&Entry{
		TimestampMicros: time.Now().UnixMicro(),
		Closed:          true,
	})
}

type recordingReader struct {
	r       *Recorder
	fd      FD
	wrapped io.Reader
}

var _ io.Reader = (*recordingReader)(nil)

func (rc *recordingReader) Read(p []byte) (int, error) {
	amount, err := rc.wrapped.Read(p)
	if amount > 0 {
		rc.r.record(rc.fd, p[:amount])
	}
	return amount, err
}

type recordingWriter struct {
	r       *Recorder
	fd      FD
	wrapped io.Writer
}

var _ io.Writer = (*recordingWriter)(nil)

func (rc *recordingWriter) Write(p []byte) (int, error) {
	amount, err := rc.wrapped.Write(p)
	if amount > 0 {
		rc.r.record(rc.fd, p[:amount])
	}
	return amount, err
}

// NewRecorder wraps the given streams so traffic on them is forwarded to
// output.
func NewRecorder(stdin io.Reader, stdout, stderr io.Writer, output LogSink) *Recorder {
	recorder := &Recorder{
		output: output,
	}

	recorder.Stdin = &recordingReader{fd: FDStdin, r: recorder, wrapped: stdin}
	recorder.Stdout = &recordingWriter{fd: FDStdout, r: recorder, wrapped: stdout}
	recorder.Stderr = &recordingWriter{fd: FDStderr, r: recorder, wrapped: stderr}

	return recorder
}
