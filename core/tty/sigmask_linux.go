//go:build linux

package tty

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// blockSIGTTOU masks SIGTTOU on the calling thread and pins the
// goroutine to it until the returned restore function runs.
//
// The runtime installs its SIGTTOU handler with SA_RESTART, so an
// unmasked tcsetpgrp from a background group restarts forever instead
// of stopping the process. Interactive shells mask around the hand-off
// for the same reason.
func blockSIGTTOU() (func(), error) {
	runtime.LockOSThread()

	var mask, old unix.Sigset_t
	sigaddset(&mask, unix.SIGTTOU)
	if err := unix.PthreadSigmask(unix.SIG_BLOCK, &mask, &old); err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}

	return func() {
		unix.PthreadSigmask(unix.SIG_SETMASK, &old, nil)
		runtime.UnlockOSThread()
	}, nil
}

func sigaddset(set *unix.Sigset_t, sig unix.Signal) {
	// Val's word size is arch dependent.
	s := uint(sig) - 1
	bits := uint(unsafe.Sizeof(set.Val[0])) * 8
	set.Val[s/bits] |= 1 << (s % bits)
}
