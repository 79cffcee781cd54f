package main

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mycelian/mycelian-journal/client"
	"github.com/mycelian/mycelian-journal/internal/devserver"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	b := &strings.Builder{}
	root := NewRootCmd()
	root.SetOut(b)
	root.SetArgs(args)
	err := root.Execute()
	return b.String(), err
}

func TestCLI_LoginAddListDelete(t *testing.T) {
	srv := httptest.NewServer(devserver.New(devserver.WithToken("cli-token", "cli-user")).Router())
	defer srv.Close()

	t.Setenv("JOURNAL_STATE_DIR", t.TempDir())
	t.Setenv("JOURNAL_BASE_URL", srv.URL)

	// Signed out: the backend rejects the request.
	if _, err := runCLI(t, "list"); client.StatusCode(err) != 401 {
		t.Fatalf("expected 401 before login, got %v", err)
	}

	if out, err := runCLI(t, "login", "--token", "cli-token"); err != nil || !strings.Contains(out, "Signed in") {
		t.Fatalf("login: %q %v", out, err)
	}

	if _, err := runCLI(t, "add", "text", "--content", "hello", "--mood", "Happy"); err != nil {
		t.Fatalf("add text: %v", err)
	}

	photo := filepath.Join(t.TempDir(), "beach.jpg")
	if err := os.WriteFile(photo, []byte("jpeg"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "add", "photo", "--photo", photo, "--caption", "beach"); err != nil {
		t.Fatalf("add photo: %v", err)
	}

	if _, err := runCLI(t, "add", "text", "--content", "x", "--mood", "Elated"); err == nil {
		t.Fatal("expected invalid mood to be rejected")
	}

	out, err := runCLI(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var entries []client.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode list output: %v\n%s", err, out)
	}
	if len(entries) != 2 || entries[0].Type != client.EntryPhoto || entries[1].Content != "hello" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if !strings.HasPrefix(entries[0].PhotoURI, srv.URL+"/media/") {
		t.Fatalf("photo was not uploaded: %q", entries[0].PhotoURI)
	}

	if out, err := runCLI(t, "delete", entries[1].ID); err != nil || !strings.Contains(out, entries[1].ID) {
		t.Fatalf("delete: %q %v", out, err)
	}
	if _, err := runCLI(t, "delete", entries[1].ID); client.StatusCode(err) != 404 {
		t.Fatalf("expected 404 deleting twice, got %v", err)
	}

	if _, err := runCLI(t, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := runCLI(t, "list"); client.StatusCode(err) != 401 {
		t.Fatalf("expected 401 after logout, got %v", err)
	}
}

func TestToURI(t *testing.T) {
	if got, _ := toURI("https://cdn/a.jpg"); got != "https://cdn/a.jpg" {
		t.Fatalf("remote uri changed: %q", got)
	}
	got, err := toURI("/tmp/my clip.mov")
	if err != nil || got != "file:///tmp/my%20clip.mov" {
		t.Fatalf("toURI: %q %v", got, err)
	}
	if _, err := toURI(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
	if mediaTypeOf(got) != client.MediaVideo || mediaTypeOf("file:///a.m4a") != client.MediaAudio || mediaTypeOf("file:///a.png") != client.MediaImage {
		t.Fatal("unexpected media type mapping")
	}
}
