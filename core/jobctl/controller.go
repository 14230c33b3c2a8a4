// Package jobctl launches external commands as foreground jobs.
//
// Every job runs in its own process group. On interactive sessions the
// controlling terminal is handed to the job's group for its lifetime
// and handed back to the shell when it is reaped, so keyboard signals
// reach the job and never the shell.
package jobctl

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"syscall"

	"github.com/jmorland/jcsh/core/eventlog"
	"github.com/jmorland/jcsh/core/tty"
	"golang.org/x/sys/unix"
)

// Controller launches foreground jobs and arbitrates the terminal
// between them and the shell.
type Controller struct {
	// TTY is the controlling terminal. Leave nil when the shell is not
	// interactive; no terminal hand-off happens then.
	TTY *tty.Terminal
	// ShellPgid is the process group the terminal returns to after
	// every job.
	ShellPgid int

	// Stdin, Stdout and Stderr are the child's standard streams. On an
	// interactive session Stdin must be the controlling terminal so
	// descriptor 0 in the child names the tty it is handed.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Diag receives the shell's own diagnostics about the job.
	Diag io.Writer

	// Events receives one record per launched command. May be nil.
	Events *eventlog.SessionLogger
}

// Run resolves argv[0], launches it as a foreground job, and blocks
// until the child is reaped. On interactive sessions the terminal is
// handed back to ShellPgid before Run returns, whatever the outcome.
func (c *Controller) Run(argv []string) Status {
	if len(argv) == 0 {
		return Exit(0)
	}

	path, err := exec.LookPath(argv[0])
	if err != nil {
		return c.lookupFailed(argv, err)
	}

	cmd := &exec.Cmd{
		Path:        path,
		Args:        argv,
		Stdin:       c.Stdin,
		Stdout:      c.Stdout,
		Stderr:      c.Stderr,
		SysProcAttr: c.spawnAttr(),
	}

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(c.diag(), "%s: %v\n", argv[0], err)
		status := Exit(StatusSpawnFailed)
		c.record(argv, path, status)
		return status
	}

	if c.TTY != nil {
		// Reclaim the terminal on every path out.
		defer c.TTY.SetForeground(c.ShellPgid)
	}

	// The child performs the same group and terminal hand-off between
	// fork and exec; repeating it here closes the race over which side
	// runs first. A failure means the child already won, or is gone.
	pid := cmd.Process.Pid
	_ = unix.Setpgid(pid, pid)
	if c.TTY != nil {
		_ = c.TTY.SetForeground(pid)
	}

	status := c.wait(cmd)
	c.record(argv, path, status)
	return status
}

func (c *Controller) lookupFailed(argv []string, err error) Status {
	var status Status
	if errors.Is(err, fs.ErrPermission) {
		fmt.Fprintf(c.diag(), "%s: permission denied\n", argv[0])
		status = Exit(StatusNoPermission)
	} else {
		fmt.Fprintf(c.diag(), "%s: command not found\n", argv[0])
		status = Exit(StatusNotFound)
	}
	c.record(argv, "", status)
	return status
}

func (c *Controller) wait(cmd *exec.Cmd) Status {
	err := cmd.Wait()
	if err == nil {
		return DecodeWait(waitStatus(cmd.ProcessState))
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return DecodeWait(waitStatus(exitErr.ProcessState))
	}

	status := Status{Code: -1}
	fmt.Fprintf(c.diag(), "wait on pid %d failed: %v\n", cmd.Process.Pid, err)
	return status
}

// spawnAttr configures the kernel-side part of the launch: the child
// lands in its own process group, and on interactive sessions the
// kernel points the terminal at that group between fork and exec. Exec
// also reverts caught signals to their defaults, which hands the child
// the standard dispositions for the job signals the shell ignores.
func (c *Controller) spawnAttr() *syscall.SysProcAttr {
	attr := &syscall.SysProcAttr{Setpgid: true}
	if c.TTY != nil {
		attr.Foreground = true
		// Ctty counts in the child's descriptor table, where descriptor
		// 0 is the terminal passed as Stdin.
		attr.Ctty = 0
	}
	return attr
}

func (c *Controller) diag() io.Writer {
	if c.Diag == nil {
		return io.Discard
	}
	return c.Diag
}

func (c *Controller) record(argv []string, path string, status Status) {
	if c.Events == nil {
		return
	}
	err := c.Events.Record(&eventlog.RunCommand{
		Command:             argv,
		ResolvedCommandPath: path,
		Status:              status.Code,
		Outcome:             status.String(),
	})
	if err != nil {
		log.Print(err)
	}
}

func waitStatus(ps *os.ProcessState) syscall.WaitStatus {
	ws, _ := ps.Sys().(syscall.WaitStatus)
	return ws
}
