// Package devserver is an in-memory journal backend for local development and
// end-to-end tests. It serves the same four endpoints as the real backend plus
// the uploaded media themselves.
package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/mycelian/mycelian-journal/devmode"
	"github.com/mycelian/mycelian-journal/internal/api"
	"github.com/mycelian/mycelian-journal/internal/media"
	"github.com/mycelian/mycelian-journal/internal/types"
)

const (
	// MediaPath serves uploaded files.
	MediaPath = "/media/{name}"

	maxPageSize           = 200
	defaultMaxUploadBytes = 64 << 20
)

// DevUserID owns everything created with devmode.APIKey.
const DevUserID = "dev-user"

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l zerolog.Logger) Option { return func(s *Server) { s.log = l } }

// WithPublicURL sets the base used in upload URLs. By default it is derived
// from the request's Host header.
func WithPublicURL(u string) Option {
	return func(s *Server) { s.publicURL = strings.TrimRight(u, "/") }
}

// WithToken accepts token as the session of userID.
func WithToken(token, userID string) Option {
	return func(s *Server) { s.users[token] = userID }
}

// WithMaxUploadBytes caps the multipart request size.
func WithMaxUploadBytes(n int64) Option { return func(s *Server) { s.maxUpload = n } }

// WithClock overrides time.Now for createdAt stamps.
func WithClock(now func() time.Time) Option { return func(s *Server) { s.now = now } }

// Server is the dev backend.
type Server struct {
	store     *store
	users     map[string]string // token -> user id
	log       zerolog.Logger
	publicURL string
	maxUpload int64
	now       func() time.Time
}

// New returns a Server that accepts devmode.APIKey plus any WithToken sessions.
func New(opts ...Option) *Server {
	s := &Server{
		store:     newStore(),
		users:     map[string]string{devmode.APIKey: DevUserID},
		log:       zerolog.Nop(),
		maxUpload: defaultMaxUploadBytes,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(recoveryMiddleware(s.log), accessLogMiddleware(s.log))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.HandleFunc(MediaPath, s.serveMedia).Methods(http.MethodGet)

	authed := r.NewRoute().Subrouter()
	authed.Use(s.authMiddleware)
	authed.HandleFunc(api.TimelinePath, s.createEntry).Methods(http.MethodPost)
	authed.HandleFunc(api.TimelinePath, s.listEntries).Methods(http.MethodGet)
	authed.HandleFunc(api.TimelineIDPath, s.deleteEntry).Methods(http.MethodDelete)
	authed.HandleFunc(api.UploadPath, s.upload).Methods(http.MethodPost)
	return r
}

// createEntry handles POST /api/timeline.
func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	var p types.CreateEntryPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !p.Type.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown entry type %q", p.Type))
		return
	}
	if p.Mood != nil && !p.Mood.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown mood %q", *p.Mood))
		return
	}

	e := types.EntryResponse{
		ID:                 uuid.NewString(),
		CreatedAt:          s.now().UTC(),
		CreateEntryPayload: p,
		Media:              normalizeMedia(p),
	}
	s.store.prepend(userFrom(r.Context()), e)
	s.log.Info().Str("entry_id", e.ID).Str("type", string(p.Type)).Msg("entry created")
	writeJSON(w, http.StatusCreated, e)
}

// listEntries handles GET /api/timeline?limit=&offset=.
func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", api.DefaultPageSize)
	if err != nil || limit <= 0 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset, err := intParam(r, "offset", 0)
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}
	writeJSON(w, http.StatusOK, s.store.page(userFrom(r.Context()), limit, offset))
}

// deleteEntry handles DELETE /api/timeline/{id}.
func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.store.remove(userFrom(r.Context()), id) {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// upload handles POST /api/upload with a multipart "file" part.
func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.maxUpload {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	f, hdr, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading upload failed")
		return
	}
	contentType := hdr.Header.Get("Content-Type")
	if contentType == "" {
		contentType = media.GuessMIMEType(hdr.Filename)
	}
	name := uuid.NewString() + strings.ToLower(path.Ext(hdr.Filename))
	s.store.putBlob(name, blob{contentType: contentType, data: data})

	base := s.publicURL
	if base == "" {
		base = "http://" + r.Host
	}
	s.log.Info().Str("name", name).Str("content_type", contentType).Int("bytes", len(data)).Msg("media stored")
	writeJSON(w, http.StatusOK, types.UploadResponse{URL: base + "/media/" + name})
}

// serveMedia handles GET /media/{name}.
func (s *Server) serveMedia(w http.ResponseWriter, r *http.Request) {
	b, ok := s.store.blob(mux.Vars(r)["name"])
	if !ok {
		writeError(w, http.StatusNotFound, "media not found")
		return
	}
	w.Header().Set("Content-Type", b.contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(b.data)))
	_, _ = w.Write(b.data)
}

// normalizeMedia derives the media[] array the backend returns with each entry.
func normalizeMedia(p types.CreateEntryPayload) []types.MediaItem {
	out := []types.MediaItem{}
	switch p.Type {
	case types.EntryPhoto:
		photos := p.PhotoURIs
		if len(photos) == 0 && p.PhotoURI != nil && *p.PhotoURI != "" {
			photos = []string{*p.PhotoURI}
		}
		for _, u := range photos {
			out = append(out, types.MediaItem{URI: u, Type: types.MediaImage})
		}
	case types.EntryVideo:
		if p.VideoURI != nil && *p.VideoURI != "" {
			out = append(out, types.MediaItem{URI: *p.VideoURI, Type: types.MediaVideo, Duration: p.VideoDuration})
		}
	case types.EntryAudio:
		if p.AudioURI != nil && *p.AudioURI != "" {
			out = append(out, types.MediaItem{URI: *p.AudioURI, Type: types.MediaAudio, Duration: p.AudioDuration})
		}
	case types.EntryStory:
		out = append(out, p.StoryMedia...)
	}
	return out
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
