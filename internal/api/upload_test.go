package api

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	jerrors "github.com/mycelian/mycelian-journal/internal/errors"
)

func TestUploadMedia_Multipart(t *testing.T) {
	t.Parallel()
	rc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != UploadPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/form-data; boundary=") {
			t.Errorf("expected multipart content type, got %q", ct)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file field: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		body, _ := io.ReadAll(f)
		if string(body) != "jpegbytes" || hdr.Filename != "a.jpg" {
			t.Errorf("unexpected part %q %q", hdr.Filename, body)
		}
		if got := hdr.Header.Get("Content-Type"); got != "image/jpeg" {
			t.Errorf("expected part mime image/jpeg, got %q", got)
		}
		_, _ = io.WriteString(w, `{"url":"https://cdn/a.jpg"}`)
	})

	url, err := UploadMedia(context.Background(), rc, "a.jpg", "image/jpeg", strings.NewReader("jpegbytes"))
	if err != nil {
		t.Fatalf("UploadMedia error: %v", err)
	}
	if url != "https://cdn/a.jpg" {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestUploadMedia_Failures(t *testing.T) {
	t.Parallel()
	status := http.StatusOK
	rc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, `{}`)
	})
	if _, err := UploadMedia(context.Background(), rc, "a.jpg", "image/jpeg", strings.NewReader("x")); err == nil {
		t.Fatal("expected error when response has no url")
	}

	rc = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	})
	_, err := UploadMedia(context.Background(), rc, "a.mov", "video/quicktime", strings.NewReader("x"))
	if jerrors.StatusOf(err) != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %v", err)
	}
}
