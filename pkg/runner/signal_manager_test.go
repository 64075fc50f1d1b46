package runner

import (
	"context"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalManager_ResetRearms(t *testing.T) {
	sm := NewSignalManager(context.Background())
	defer sm.Stop()

	first := sm.Context()
	require.NoError(t, first.Err())

	sm.Reset()
	second := sm.Context()
	assert.ErrorIs(t, first.Err(), context.Canceled, "reset releases the previous prompt context")
	assert.NoError(t, second.Err())

	sm.Stop()
	assert.ErrorIs(t, second.Err(), context.Canceled)
}

func TestSignalManager_InterruptCancelsPrompt(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("signals cannot be sent to self on windows")
	}
	sm := NewSignalManager(context.Background())
	defer sm.Stop()

	self, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, self.Signal(os.Interrupt))

	select {
	case <-sm.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("interrupt did not cancel the prompt context")
	}

	sm.Reset()
	assert.NoError(t, sm.Context().Err())
}

func TestSignalManager_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	sm := NewSignalManager(parent)
	defer sm.Stop()

	cancel()
	assert.ErrorIs(t, sm.Context().Err(), context.Canceled)

	start := time.Now()
	sm.CheckRace()
	assert.Less(t, time.Since(start), 50*time.Millisecond, "no wait once cancelled")
}

func TestSignalManager_CheckRaceWaitsBriefly(t *testing.T) {
	sm := NewSignalManager(context.Background())
	defer sm.Stop()

	start := time.Now()
	sm.CheckRace()
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)
}
