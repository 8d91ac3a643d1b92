// Package events allows for the registering and receiving of events. It is
// used to push node events to websocket clients.
package events

import (
	"fmt"
	"sync"
)

// messageBuffer is the number of events held for a receiver. Since a message
// is dropped when the receiver is not ready, this gives a websocket writer
// time to catch up.
const messageBuffer = 100

// Events maintains a mapping of unique id and channels so goroutines
// can register and receive events.
type Events struct {
	m        map[string]chan string
	mu       sync.RWMutex
	shutdown bool
}

// New constructs an events for registering and receiving events.
func New() *Events {
	return &Events{
		m: make(map[string]chan string),
	}
}

// Shutdown closes and removes all channels that were provided by
// the call to Acquire. No new channels can be acquired after this call.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	evt.shutdown = true
	for id, ch := range evt.m {
		delete(evt.m, id)
		close(ch)
	}
}

// Acquire takes a unique id and returns a channel that can be used
// to receive events.
func (evt *Events) Acquire(id string) (chan string, error) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if evt.shutdown {
		return nil, fmt.Errorf("events shutdown, id %q rejected", id)
	}

	ch, exists := evt.m[id]
	if exists {
		return ch, nil
	}

	evt.m[id] = make(chan string, messageBuffer)
	return evt.m[id], nil
}

// Release closes and removes the channel that was provided by
// the call to Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(ch)
	return nil
}

// Send signals a message to every registered channel. Send will not block
// waiting for a receiver on any given channel.
func (evt *Events) Send(s string) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.m {
		select {
		case ch <- s:
		default:
		}
	}
}
