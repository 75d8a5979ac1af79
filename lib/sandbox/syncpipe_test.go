package sandbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncPipeSignalReleasesWait(t *testing.T) {
	p, err := newSyncPipe()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- p.Wait() }()

	select {
	case <-done:
		t.Fatal("Wait returned before SignalDone was called")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, p.SignalDone())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after SignalDone")
	}
}

func TestSyncPipeRejectsPayload(t *testing.T) {
	p, err := newSyncPipe()
	require.NoError(t, err)

	go func() {
		p.w.Write([]byte("x"))
		p.w.Close()
	}()

	err = p.Wait()
	assert.Error(t, err, "a non-EOF byte on the sync pipe must be a protocol violation")
}
