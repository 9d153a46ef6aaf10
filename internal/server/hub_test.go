package server

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tasklist/taskboard/internal/task"
)

func TestHub_Publish(t *testing.T) {
	h := NewHub()
	a, unsubA := h.Subscribe()
	b, unsubB := h.Subscribe()
	defer unsubB()

	ev := task.Event{Kind: task.EventCreated, TaskID: "1"}
	h.Publish(ev)

	assert.Equal(t, ev, <-a)
	assert.Equal(t, ev, <-b)

	unsubA()
	unsubA()
	assert.Equal(t, 1, h.Len())
	_, ok := <-a
	assert.False(t, ok)
}

func TestHub_DropsSlowSubscribers(t *testing.T) {
	h := NewHub()
	ch, unsub := h.Subscribe()
	defer unsub()

	for i := 0; i < subscriberBuffer+1; i++ {
		h.Publish(task.Event{Kind: task.EventToggled})
	}

	assert.Equal(t, 0, h.Len())
	n := 0
	for range ch {
		n++
	}
	assert.Equal(t, subscriberBuffer, n)
}

func TestHub_Close(t *testing.T) {
	h := NewHub()
	ch, _ := h.Subscribe()

	h.Close()
	_, ok := <-ch
	assert.False(t, ok)

	late, _ := h.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}
