package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// opQueue runs one console's remote calls one at a time, in the order Update
// queued them. Commands returned by bubbletea run concurrently and in no
// particular order, so lifecycle calls for a console never go through them
// directly.
type opQueue struct {
	mu      sync.Mutex
	pending []func()
	running bool
}

// enqueue schedules fn behind everything already queued and returns a
// command that reports its result
func (q *opQueue) enqueue(fn func() tea.Msg) tea.Cmd {
	res := make(chan tea.Msg, 1)

	q.mu.Lock()
	q.pending = append(q.pending, func() { res <- fn() })
	if !q.running {
		q.running = true
		go q.drain()
	}
	q.mu.Unlock()

	return func() tea.Msg {
		return <-res
	}
}

func (q *opQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		job := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		job()
	}
}
