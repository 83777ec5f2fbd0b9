package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svcctl/internal/config"
	"svcctl/internal/services"
)

func startStore(t *testing.T, delay time.Duration) *Store {
	t.Helper()
	s := New(config.ServiceDefinition{Name: "store", StartDelay: delay})
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Shutdown)
	return s
}

func TestStore_WarmUp(t *testing.T) {
	s := startStore(t, 30*time.Millisecond)

	assert.Equal(t, services.StateStarting, s.State())
	_, _, err := s.Get("k")
	assert.ErrorIs(t, err, ErrNotRunning)

	require.Eventually(t, func() bool { return s.State() == services.StateRunning }, time.Second, time.Millisecond)
}

func TestStore_Operations(t *testing.T) {
	s := startStore(t, 0)
	require.Eventually(t, func() bool { return s.State() == services.StateRunning }, time.Second, time.Millisecond)

	require.NoError(t, s.Set("b", "2"))
	require.NoError(t, s.Set("a", "1"))

	v, ok, err := s.Get("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"a", "b"}, s.Keys())

	deleted, err := s.Delete("a")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.Delete("a")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, ok, err = s.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ShutdownDropsData(t *testing.T) {
	s := startStore(t, 0)
	require.Eventually(t, func() bool { return s.State() == services.StateRunning }, time.Second, time.Millisecond)
	require.NoError(t, s.Set("k", "v"))

	s.Shutdown()
	<-s.Terminated()

	assert.Equal(t, 0, s.Len())
	err := s.Set("k", "v")
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.Contains(t, err.Error(), "store (Stopped)")
}

func TestStore_ShutdownDuringWarmUp(t *testing.T) {
	s := startStore(t, time.Minute)

	s.Shutdown()
	select {
	case <-s.Terminated():
	case <-time.After(time.Second):
		t.Fatal("store did not terminate during warm-up")
	}
	assert.Equal(t, services.StateStopped, s.State())
}
