package core

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
)

const helperSessionEnv = "JCSH_SESSION_HELPER"

func TestMain(m *testing.M) {
	// The terminal test re-executes this binary as a real shell.
	if os.Getenv(helperSessionEnv) == "1" {
		os.Exit(runHelperSession())
	}
	os.Exit(m.Run())
}

func runHelperSession() int {
	session, err := NewSession(nil, SessionOptions{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer session.Close()
	return session.Run()
}

// ptyOutput accumulates everything the shell writes to the terminal.
type ptyOutput struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (p *ptyOutput) run(f *os.File) {
	buf := make([]byte, 4096)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			p.mu.Lock()
			p.buf.Write(buf[:n])
			p.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (p *ptyOutput) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.String()
}

func (p *ptyOutput) waitFor(t *testing.T, substr string) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(p.String(), substr) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q, terminal so far:\n%s", substr, p.String())
}

func TestSessionOnTerminal(t *testing.T) {
	requireTool(t, "printf")

	exe, err := os.Executable()
	require.NoError(t, err)

	cmd := exec.Command(exe)
	cmd.Env = append(os.Environ(), helperSessionEnv+"=1", EnvPrompt+"=jcshtest> ")

	ptmx, err := pty.Start(cmd)
	if err != nil {
		t.Skipf("no pty available: %v", err)
	}
	defer ptmx.Close()

	output := &ptyOutput{}
	go output.run(ptmx)

	output.waitFor(t, "jcshtest> ")

	// The format string keeps the expected text out of the echoed input,
	// so seeing it means the job really ran.
	_, err = ptmx.Write([]byte("printf out-%s-band of\r"))
	require.NoError(t, err)
	output.waitFor(t, "out-of-band")

	_, err = ptmx.Write([]byte("exit\r"))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("shell didn't exit")
	}
}
