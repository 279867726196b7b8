// Package sse streams share notifications to browsers as Server-Sent Events.
//
// Every event gets a sequence id. A client reconnecting with Last-Event-ID is
// sent the recent events it missed before live ones.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// EventNoteShared is sent after a share artifact has been written.
const EventNoteShared = "note.shared"

// HistorySize is how many past events are kept for replay.
const HistorySize = 32

const subscriberBuffer = 64

// SharedData is the payload of EventNoteShared. It never carries the password.
type SharedData struct {
	NoteID string `json:"note_id"`
	Type   string `json:"type"`
	Path   string `json:"path"`
}

type frame struct {
	id  uint64
	raw []byte
}

// Subscription receives encoded frames until it is cancelled or the broker
// closes.
type Subscription struct {
	C <-chan []byte

	ch chan []byte
}

// Broker fans share events out to subscribers.
type Broker struct {
	keepAlive time.Duration

	mu      sync.Mutex
	subs    map[*Subscription]struct{}
	history []frame
	seq     uint64
	closed  bool
}

// NewBroker creates a broker whose handlers send a keep-alive comment every
// keepAlive interval. Zero means 30s.
func NewBroker(keepAlive time.Duration) *Broker {
	if keepAlive <= 0 {
		keepAlive = 30 * time.Second
	}
	return &Broker{
		keepAlive: keepAlive,
		subs:      make(map[*Subscription]struct{}),
	}
}

// Subscribe registers a subscriber. Events with an id above lastID still in
// the history are queued first; pass 0 for live events only.
func (b *Broker) Subscribe(lastID uint64) *Subscription {
	ch := make(chan []byte, subscriberBuffer+HistorySize)
	sub := &Subscription{C: ch, ch: ch}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return sub
	}
	if lastID > 0 {
		for _, f := range b.history {
			if f.id > lastID {
				ch <- f.raw
			}
		}
	}
	b.subs[sub] = struct{}{}
	return sub
}

// Unsubscribe removes sub and closes its channel. Safe to call twice.
func (b *Broker) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(sub.ch)
	}
}

// Clients returns the number of subscribers.
func (b *Broker) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// LastID returns the id of the most recent event, or 0.
func (b *Broker) LastID() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}

// Publish encodes data as an event of the given type and sends it to every
// subscriber. A subscriber with a full buffer misses the event.
func (b *Broker) Publish(eventType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: encode %s: %w", eventType, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.seq++
	f := frame{
		id:  b.seq,
		raw: []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", b.seq, eventType, payload)),
	}
	b.history = append(b.history, f)
	if len(b.history) > HistorySize {
		b.history = b.history[len(b.history)-HistorySize:]
	}
	for sub := range b.subs {
		select {
		case sub.ch <- f.raw:
		default:
		}
	}
	return nil
}

// PublishShared announces a saved share.
func (b *Broker) PublishShared(noteID, shareType, path string) {
	_ = b.Publish(EventNoteShared, SharedData{NoteID: noteID, Type: shareType, Path: path})
}

// Close ends every subscription. Later publishes are ignored.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		close(sub.ch)
	}
	b.subs = nil
}

// ServeHTTP streams events to one client (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	lastID, _ := strconv.ParseUint(r.Header.Get("Last-Event-ID"), 10, 64)
	sub := b.Subscribe(lastID)
	defer b.Unsubscribe(sub)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(b.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			_, _ = w.Write([]byte(": keep-alive\n\n"))
			flusher.Flush()
		case raw, ok := <-sub.C:
			if !ok {
				return
			}
			_, _ = w.Write(raw)
			flusher.Flush()
		}
	}
}
