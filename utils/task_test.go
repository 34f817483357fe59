package utils

import (
	"github.com/stretchr/testify/assert"
	"sync/atomic"
	"testing"
)

func TestTaskOrchestratorBoundsConcurrency(t *testing.T) {
	const tasks = 20
	orchestrator := NewTaskOrchestrator(nil, tasks, 3)

	var running, peak int32
	done := 0

	for i := 0; i < tasks; i++ {
		orchestrator.Go(func() {
			current := atomic.AddInt32(&running, 1)

			for {
				previous := atomic.LoadInt32(&peak)
				if current <= previous || atomic.CompareAndSwapInt32(&peak, previous, current) {
					break
				}
			}

			orchestrator.Lock()
			done++
			orchestrator.Unlock()

			atomic.AddInt32(&running, -1)
		})
	}

	orchestrator.WaitForTasks()

	assert.Equal(t, tasks, done)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}
