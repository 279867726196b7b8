package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func receive(t *testing.T, sub *Subscription) string {
	t.Helper()
	select {
	case raw, ok := <-sub.C:
		if !ok {
			t.Fatal("subscription closed")
		}
		return string(raw)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
	return ""
}

func TestPublishShared_Frame(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	sub := b.Subscribe(0)
	defer b.Unsubscribe(sub)

	b.PublishShared("abc", "encrypted", "/tmp/out/a.html")

	got := receive(t, sub)
	want := "id: 1\nevent: note.shared\ndata: {\"note_id\":\"abc\",\"type\":\"encrypted\",\"path\":\"/tmp/out/a.html\"}\n\n"
	if got != want {
		t.Fatalf("frame = %q, want %q", got, want)
	}
	if b.LastID() != 1 {
		t.Errorf("LastID = %d, want 1", b.LastID())
	}
}

func TestSubscribe_ReplaysMissedEvents(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()

	b.PublishShared("n1", "public", "1.html")
	b.PublishShared("n2", "public", "2.html")
	b.PublishShared("n3", "public", "3.html")

	sub := b.Subscribe(1)
	defer b.Unsubscribe(sub)

	if got := receive(t, sub); !strings.HasPrefix(got, "id: 2\n") {
		t.Fatalf("first replayed = %q", got)
	}
	if got := receive(t, sub); !strings.HasPrefix(got, "id: 3\n") {
		t.Fatalf("second replayed = %q", got)
	}

	b.PublishShared("n4", "public", "4.html")
	if got := receive(t, sub); !strings.HasPrefix(got, "id: 4\n") {
		t.Fatalf("live = %q", got)
	}
}

func TestSubscribe_ZeroSkipsHistory(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	b.PublishShared("old", "public", "old.html")

	sub := b.Subscribe(0)
	defer b.Unsubscribe(sub)
	select {
	case raw := <-sub.C:
		t.Fatalf("unexpected replay %q", raw)
	default:
	}
}

func TestHistoryIsBounded(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	for i := 0; i < HistorySize+10; i++ {
		b.PublishShared("n", "public", "x.html")
	}
	if len(b.history) != HistorySize {
		t.Fatalf("history = %d, want %d", len(b.history), HistorySize)
	}
	if b.history[0].id != 11 {
		t.Errorf("oldest id = %d, want 11", b.history[0].id)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	sub := b.Subscribe(0)
	if b.Clients() != 1 {
		t.Fatalf("Clients = %d, want 1", b.Clients())
	}
	b.Unsubscribe(sub)
	b.Unsubscribe(sub)
	if b.Clients() != 0 {
		t.Fatalf("Clients = %d after unsubscribe", b.Clients())
	}
	if _, ok := <-sub.C; ok {
		t.Fatal("channel still open")
	}
}

func TestPublish_FullBufferDoesNotBlock(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	sub := b.Subscribe(0)
	defer b.Unsubscribe(sub)

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer+HistorySize+20; i++ {
			b.PublishShared("n", "public", "x.html")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestClose(t *testing.T) {
	b := NewBroker(time.Second)
	sub := b.Subscribe(0)
	b.Close()
	b.Close()

	if _, ok := <-sub.C; ok {
		t.Fatal("expected subscription closed")
	}
	if b.Clients() != 0 {
		t.Fatalf("Clients = %d after close", b.Clients())
	}
	late := b.Subscribe(0)
	if _, ok := <-late.C; ok {
		t.Fatal("subscription after close should be closed")
	}
	if err := b.Publish(EventNoteShared, SharedData{}); err != nil {
		t.Fatalf("Publish after close: %v", err)
	}
}

func TestServeHTTP_StreamsWithReplayAndKeepAlive(t *testing.T) {
	b := NewBroker(20 * time.Millisecond)
	defer b.Close()
	b.PublishShared("missed", "public", "m.html")

	srv := httptest.NewServer(b)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Last-Event-ID", "0")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	// Last-Event-ID 0 means live only; publish once the handler is subscribed.
	deadline := time.Now().Add(time.Second)
	for b.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	b.PublishShared("live", "public", "l.html")

	var sawEvent, sawKeepAlive bool
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() && !(sawEvent && sawKeepAlive) {
		line := sc.Text()
		if strings.Contains(line, "missed") {
			t.Fatalf("replayed event for Last-Event-ID 0: %q", line)
		}
		if strings.Contains(line, `"note_id":"live"`) {
			sawEvent = true
		}
		if line == ": keep-alive" {
			sawKeepAlive = true
		}
	}
	if !sawEvent || !sawKeepAlive {
		t.Fatalf("event = %v, keep-alive = %v", sawEvent, sawKeepAlive)
	}
}
