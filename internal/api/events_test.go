package api

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/noteshare/internal/locale"
	"github.com/starford/noteshare/internal/markdown"
	"github.com/starford/noteshare/internal/share"
	"github.com/starford/noteshare/internal/sse"
	"github.com/starford/noteshare/internal/storage"
	"github.com/starford/noteshare/internal/testutil"
)

func TestShareNote_PublishesEvent(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	_, profile := testutil.TestProfile(t)
	note := testutil.AddNote(t, profile, "Evented", "x")

	sink, err := storage.EnsureFS(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatalf("EnsureFS: %v", err)
	}
	features := markdown.DefaultFeatures()
	renderer := markdown.NewRenderer(features, markdown.DefaultTheme(), markdown.NewGoldmark(features), markdown.NewPlain(), logger)
	svc := share.NewService(profile, renderer, sink, locale.NewLoader(locale.Builtin(), "en", logger).Lookup("en"), logger)

	broker := sse.NewBroker(time.Second)
	defer broker.Close()
	sub := broker.Subscribe(0)
	defer broker.Unsubscribe(sub)

	router := NewRouter(svc, profile, broker, false, "", 7)
	body := strings.NewReader(`{"type":"encrypted","password":"pw"}`)
	req := httptest.NewRequest(http.MethodPost, "/notes/"+note.ID+"/share", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	select {
	case msg := <-sub.C:
		s := string(msg)
		if !strings.Contains(s, "event: note.shared") || !strings.Contains(s, note.ID) {
			t.Errorf("event = %q", s)
		}
		if strings.Contains(s, `"pw"`) {
			t.Errorf("event leaks password: %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}
}
