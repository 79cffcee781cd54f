package client

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mycelian/mycelian-journal/internal/devserver"
	"github.com/mycelian/mycelian-journal/internal/localstate"
)

// Full flow against the dev backend: sign in through the session store, save
// every entry type, reload, delete, sign out.
func TestTimeline_AgainstDevServer(t *testing.T) {
	srv := httptest.NewServer(devserver.New(devserver.WithToken("tok-e2e", "e2e-user")).Router())
	defer srv.Close()

	sessions, err := localstate.OpenSessionStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenSessionStore: %v", err)
	}
	defer func() { _ = sessions.Close() }()

	c, err := New(srv.URL, WithCredentialSource(sessions), WithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = c.Close() }()
	tl := c.NewTimeline()
	ctx := context.Background()

	// Signed out: the backend's auth error comes back as a plain request error.
	if _, err := tl.Refresh(ctx); StatusCode(err) != 401 {
		t.Fatalf("expected 401 while signed out, got %v", err)
	}

	if err := sessions.Save(ctx, localstate.Session{Token: "tok-e2e"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	dir := t.TempDir()
	photo := filepath.Join(dir, "sunset.jpg")
	if err := os.WriteFile(photo, []byte("jpeg"), 0o600); err != nil {
		t.Fatal(err)
	}
	drafts := []Draft{
		{Type: EntryText, Content: "hello", Mood: MoodCalm, Location: "Lisbon"},
		{Type: EntryPhoto, PhotoURIs: []string{"file://" + photo, "https://elsewhere/b.jpg"}},
		NewStoryDraft("Weekend", []string{"sat", "sun"}, []MediaItem{{URI: "file://" + photo, Type: MediaImage}}),
	}
	for _, d := range drafts {
		if _, err := tl.AddEntry(ctx, d); err != nil {
			t.Fatalf("AddEntry %s: %v", d.Type, err)
		}
	}

	tl.ClearEntries()
	got, err := tl.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(got) != 3 || got[0].Type != EntryStory || got[2].Type != EntryText {
		t.Fatalf("unexpected timeline %+v", got)
	}
	if !strings.HasPrefix(got[1].PhotoURIs[0], srv.URL+"/media/") || got[1].PhotoURIs[1] != "https://elsewhere/b.jpg" {
		t.Fatalf("photo not uploaded: %v", got[1].PhotoURIs)
	}
	if got[1].PhotoURI != got[1].PhotoURIs[0] {
		t.Fatalf("primary photo mismatch: %+v", got[1].Draft)
	}
	if len(got[0].Pages()) != 2 || !strings.HasPrefix(got[0].StoryMedia[0].URI, srv.URL) {
		t.Fatalf("story not round-tripped: %+v", got[0].Draft)
	}
	if got[2].Location != "Lisbon" || got[2].Mood != MoodCalm {
		t.Fatalf("text entry lost fields: %+v", got[2].Draft)
	}

	if err := tl.RemoveEntry(ctx, got[1].ID); err != nil {
		t.Fatalf("RemoveEntry: %v", err)
	}
	if ids := ids(tl.Entries()); len(ids) != 2 || ids[0] != got[0].ID || ids[1] != got[2].ID {
		t.Fatalf("unexpected ids after delete: %v", ids)
	}

	if err := sessions.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	tl.ClearEntries()
	if _, err := tl.Refresh(ctx); StatusCode(err) != 401 {
		t.Fatalf("expected 401 after sign-out, got %v", err)
	}
	if tl.Len() != 0 {
		t.Fatal("failed refresh must not repopulate the list")
	}
}
