package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListenerRecorder_RecordsStates(t *testing.T) {
	state := 0
	rec := NewListenerRecorder(func() int { return state })
	listener := rec.Listener()

	state = 1
	listener()
	state = 2
	listener()

	assert.Equal(t, 2, rec.Count())
	assert.Equal(t, []int{1, 2}, rec.States())

	rec.Reset()
	assert.Equal(t, 0, rec.Count())
	assert.Empty(t, rec.States())
}

func TestListenerRecorder_StatesIsACopy(t *testing.T) {
	rec := NewListenerRecorder(func() int { return 7 })
	rec.Listener()()

	states := rec.States()
	states[0] = 99
	assert.Equal(t, []int{7}, rec.States())
}

func TestListenerRecorder_ConcurrentAccess(t *testing.T) {
	rec := NewListenerRecorder(func() int { return 1 })
	listener := rec.Listener()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				listener()
				_ = rec.Count()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, rec.Count())
}
