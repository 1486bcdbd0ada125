package ui

import (
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestOpQueueRunsInEnqueueOrder(t *testing.T) {
	var q opQueue
	var mu sync.Mutex
	var order []int

	cmds := make([]tea.Cmd, 0, 20)
	for i := 0; i < 20; i++ {
		i := i
		cmds = append(cmds, q.enqueue(func() tea.Msg {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return i
		}))
	}

	// collect results backwards; execution order is unaffected
	for i := len(cmds) - 1; i >= 0; i-- {
		assert.Equal(t, i, cmds[i]())
	}
	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		assert.Equal(t, i, v)
	}
	assert.Len(t, order, 20)
}

func TestOpQueueRestartsAfterIdle(t *testing.T) {
	var q opQueue

	assert.Equal(t, "a", q.enqueue(func() tea.Msg { return "a" })())
	assert.Equal(t, "b", q.enqueue(func() tea.Msg { return "b" })())
}
