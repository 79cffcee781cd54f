package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mycelian/mycelian-journal/devmode"
	"github.com/mycelian/mycelian-journal/internal/api"
	"github.com/mycelian/mycelian-journal/internal/media"
	"github.com/mycelian/mycelian-journal/internal/shardqueue"
)

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

// Client talks to the journal backend. It owns the HTTP transport chain, the
// media resolver and the write queue shared by every Timeline created from it.
type Client struct {
	baseURL string
	http    *http.Client
	rest    *resty.Client
	exec    executor
	creds   CredentialSource
	log     zerolog.Logger

	resolver          *media.Resolver
	uploadConcurrency int
	pageSize          int

	timelines  uint32 // counter for timeline queue keys
	closedOnce uint32 // ensures Close is idempotent
}

// New constructs a Client for the backend at baseURL. Without
// WithCredentialSource requests go out unauthenticated.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("baseURL cannot be empty")
	}

	c := &Client{
		baseURL:           strings.TrimRight(baseURL, "/"),
		http:              &http.Client{Timeout: 30 * time.Second},
		creds:             StaticCredential(""),
		log:               log.Logger,
		uploadConcurrency: 4,
		pageSize:          api.DefaultPageSize,
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.exec == nil {
		c.exec = newDefaultExecutor(c.log)
	}

	// Credentials sit on top so the debug dump shows the header actually sent.
	c.wrapTransportWithCredentials()

	c.rest = api.NewRestClient(c.http, c.baseURL, c.log)
	c.resolver = media.NewResolver(
		media.FileUploader{Send: c.UploadMedia},
		media.WithConcurrency(c.uploadConcurrency),
		media.WithLogger(c.log),
		media.WithObserver(observeMediaOutcome),
	)
	return c, nil
}

// NewWithDevMode constructs a Client that authenticates with the shared
// development credential. Only the local dev backend accepts it.
func NewWithDevMode(baseURL string, opts ...Option) (*Client, error) {
	return New(baseURL, append([]Option{WithCredentialSource(StaticCredential(devmode.APIKey))}, opts...)...)
}

func (c *Client) wrapTransportWithCredentials() {
	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.http.Transport = &credentialTransport{base: base, source: c.creds, log: c.log}
}

// Close stops the write queue after draining it. Safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	if c.exec != nil {
		c.exec.Stop()
	}
	return nil
}

func (c *Client) closed() bool { return atomic.LoadUint32(&c.closedOnce) == 1 }

// newDefaultExecutor builds the write queue. Writes get a single attempt: a
// failed save is reported to the caller, who decides whether to try again.
func newDefaultExecutor(logger zerolog.Logger) *shardqueue.ShardExecutor {
	cfg, err := shardqueue.LoadConfig()
	if err != nil {
		logger.Warn().Err(err).Msg("invalid SQ_ settings, using defaults")
		cfg = shardqueue.Config{}
	}
	cfg.MaxAttempts = 1
	cfg.Logger = logger
	cfg.ErrorHandler = func(err error) {
		logger.Debug().Err(err).Msg("timeline write failed")
	}
	return shardqueue.NewShardExecutor(cfg)
}

// --------------------------------------------------------------------
// Gateway operations - delegated to internal/api
// --------------------------------------------------------------------

// CreateEntry persists a resolved payload. Most callers want Timeline.AddEntry.
func (c *Client) CreateEntry(ctx context.Context, payload CreateEntryPayload) (*EntryResponse, error) {
	return api.CreateEntry(ctx, c.rest, payload)
}

// ListEntries fetches one page of entries as the backend returns them.
func (c *Client) ListEntries(ctx context.Context, params ListEntriesParams) ([]EntryResponse, error) {
	return api.ListEntries(ctx, c.rest, params)
}

// DeleteEntry removes an entry on the backend.
func (c *Client) DeleteEntry(ctx context.Context, entryID string) error {
	return api.DeleteEntry(ctx, c.rest, entryID)
}

// UploadMedia sends file content and returns its durable URL.
func (c *Client) UploadMedia(ctx context.Context, fileName, mimeType string, content io.Reader) (string, error) {
	return api.UploadMedia(ctx, c.rest, fileName, mimeType, content)
}

// EnsureRemote returns a durable URL for uri, uploading local files. On upload
// failure it returns uri unchanged.
func (c *Client) EnsureRemote(ctx context.Context, uri string) string {
	return c.resolver.EnsureRemote(ctx, uri)
}

// ResolveDraft returns a copy of d with every local media reference uploaded
// where possible.
func (c *Client) ResolveDraft(ctx context.Context, d Draft) Draft {
	return c.resolver.ResolveDraft(ctx, d)
}

