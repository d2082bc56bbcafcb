package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepverse/interview-gateway/internal/protocol"
)

func TestRegistryAddGetRemove(t *testing.T) {
	reg := NewRegistry()
	orch := New(Config{Sink: func(protocol.Event) {}})

	reg.Add("s1", orch)
	assert.Equal(t, 1, reg.Len())

	got, ok := reg.Get("s1")
	require.True(t, ok)
	assert.Same(t, orch, got)

	_, ok = reg.Get("missing")
	assert.False(t, ok)

	reg.Remove("s1")
	assert.Equal(t, 0, reg.Len())
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			reg.Add(id, New(Config{}))
			reg.Get(id)
			reg.Remove(id)
		}()
	}

	wg.Wait()
	assert.Equal(t, 0, reg.Len())
}
