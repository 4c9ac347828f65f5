package worker

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolRunsAllSubmittedTasks(t *testing.T) {
	p := NewPool(4)
	var done atomic.Int64
	for i := 0; i < 100; i++ {
		p.Submit(func() { done.Add(1) })
	}
	p.Stop()
	assert.Equal(t, int64(100), done.Load())
}
