package jobctl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestNewIgnoreTable(t *testing.T) {
	table := NewIgnoreTable()
	require.Len(t, table, len(JobSignals))
	for _, sig := range JobSignals {
		assert.Equal(t, Ignore, table[sig], "signal %v", sig)
	}
}

func TestIgnoreTableShieldsProcess(t *testing.T) {
	applied := NewIgnoreTable().Apply()
	defer applied.Close()

	// With the table applied these are drained; any one of them would
	// otherwise kill or stop the test process.
	require.NoError(t, unix.Kill(unix.Getpid(), unix.SIGINT))
	require.NoError(t, unix.Kill(unix.Getpid(), unix.SIGQUIT))
	require.NoError(t, unix.Kill(unix.Getpid(), unix.SIGTTOU))

	time.Sleep(50 * time.Millisecond)
}

func TestApplyClose(t *testing.T) {
	applied := NewIgnoreTable().Apply()
	assert.NoError(t, applied.Close())
}

func TestApplyDefaultTable(t *testing.T) {
	table := make(DispositionTable)
	for _, sig := range JobSignals {
		table[sig] = Default
	}

	applied := table.Apply()
	assert.NoError(t, applied.Close())
}
