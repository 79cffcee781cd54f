// Package media resolves the media references of a draft to durable remote URLs.
//
// Resolution never fails: a reference that cannot be uploaded keeps its local
// URI, so the entry still renders on the device that captured it. That local URI
// does not become durable until a later save uploads it successfully.
package media

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mycelian/mycelian-journal/internal/types"
)

// Outcome is what EnsureRemote did with one reference.
type Outcome string

const (
	Uploaded Outcome = "uploaded"
	Skipped  Outcome = "skipped" // already remote, or empty
	Degraded Outcome = "degraded"
)

// Uploader stores the local file behind uri and returns its durable URL.
type Uploader interface {
	Upload(ctx context.Context, uri, mimeType string) (string, error)
}

// SendFunc posts file content to the backend upload endpoint.
type SendFunc func(ctx context.Context, fileName, mimeType string, content io.Reader) (string, error)

// FileUploader opens local files and hands them to Send.
type FileUploader struct {
	Send SendFunc
}

// Upload implements Uploader.
func (u FileUploader) Upload(ctx context.Context, uri, mimeType string) (string, error) {
	f, err := os.Open(LocalPath(uri))
	if err != nil {
		return "", fmt.Errorf("open local media: %w", err)
	}
	defer func() { _ = f.Close() }()
	return u.Send(ctx, FileName(uri), mimeType, f)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithConcurrency bounds the number of uploads one ResolveAll runs at a time.
// Zero or negative means unbounded.
func WithConcurrency(n int) Option { return func(r *Resolver) { r.limit = n } }

// WithLogger sets the logger used for degraded uploads.
func WithLogger(l zerolog.Logger) Option { return func(r *Resolver) { r.log = l } }

// WithObserver is called once per reference with the outcome; used for metrics.
func WithObserver(fn func(Outcome)) Option { return func(r *Resolver) { r.observe = fn } }

// Resolver turns local media references into durable ones.
type Resolver struct {
	up      Uploader
	limit   int
	log     zerolog.Logger
	observe func(Outcome)
}

// NewResolver constructs a Resolver around up.
func NewResolver(up Uploader, opts ...Option) *Resolver {
	r := &Resolver{up: up, log: zerolog.Nop(), observe: func(Outcome) {}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EnsureRemote returns a durable URL for uri. Remote URIs come back unchanged
// without an upload. If the upload fails the failure is logged and the original
// local URI is returned.
func (r *Resolver) EnsureRemote(ctx context.Context, uri string) string {
	if uri == "" || types.IsRemoteURI(uri) {
		r.observe(Skipped)
		return uri
	}
	mimeType := GuessMIMEType(uri)
	remote, err := r.up.Upload(ctx, uri, mimeType)
	if err == nil && remote == "" {
		err = fmt.Errorf("upload returned no url")
	}
	if err != nil {
		r.log.Warn().Err(err).Str("uri", uri).Str("mime_type", mimeType).Msg("media upload failed, keeping local uri")
		r.observe(Degraded)
		return uri
	}
	r.observe(Uploaded)
	return remote
}

// ResolveAll resolves every reference in place. References are independent, so
// they upload concurrently; each degrades on its own. ResolveAll returns only
// after every reference has been resolved.
func (r *Resolver) ResolveAll(ctx context.Context, refs []*string) {
	switch len(refs) {
	case 0:
		return
	case 1:
		*refs[0] = r.EnsureRemote(ctx, *refs[0])
		return
	}
	var g errgroup.Group
	if r.limit > 0 {
		g.SetLimit(r.limit)
	}
	for _, ref := range refs {
		g.Go(func() error {
			*ref = r.EnsureRemote(ctx, *ref)
			return nil
		})
	}
	_ = g.Wait()
}

// ResolveDraft returns a copy of d whose media references have been resolved.
// The fan-out follows the entry type: every photo of a photo entry, video and
// thumbnail of a video entry, the recording of an audio entry, and every media
// item of a story. Text entries carry no media.
func (r *Resolver) ResolveDraft(ctx context.Context, d types.Draft) types.Draft {
	out := d.Clone()
	var refs []*string
	switch out.Type {
	case types.EntryAudio:
		refs = append(refs, &out.AudioURI)
	case types.EntryPhoto:
		if len(out.PhotoURIs) == 0 && out.PhotoURI != "" {
			out.PhotoURIs = []string{out.PhotoURI}
		}
		for i := range out.PhotoURIs {
			refs = append(refs, &out.PhotoURIs[i])
		}
	case types.EntryVideo:
		refs = append(refs, &out.VideoURI)
		if out.ThumbnailURI != "" {
			refs = append(refs, &out.ThumbnailURI)
		}
	case types.EntryStory:
		for i := range out.StoryMedia {
			refs = append(refs, &out.StoryMedia[i].URI)
		}
	}
	r.ResolveAll(ctx, refs)
	if out.Type == types.EntryPhoto && len(out.PhotoURIs) > 0 {
		out.PhotoURI = out.PhotoURIs[0]
	}
	return out
}
