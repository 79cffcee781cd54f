package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	jerrors "github.com/mycelian/mycelian-journal/internal/errors"
	"github.com/mycelian/mycelian-journal/internal/types"
)

// Backend routes. Exact routing belongs to the backend; these are the defaults it serves.
const (
	TimelinePath   = "/api/timeline"
	TimelineIDPath = "/api/timeline/{id}"
	UploadPath     = "/api/upload"
)

// DefaultPageSize is the fixed page requested by a timeline refresh.
const DefaultPageSize = 50

// NewRestClient builds the resty client every gateway call goes through. hc carries
// the transport chain (credentials, debug dumps); resty adds JSON and multipart handling.
// Retries stay disabled: each call is a single attempt and the caller decides what a
// failure means.
func NewRestClient(hc *http.Client, baseURL string, logger zerolog.Logger) *resty.Client {
	return resty.NewWithClient(hc).
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{logger})
}

// do executes a single request and maps every failure to a *errors.ClassifiedError.
// It never panics and never returns a non-2xx response as success.
func do(ctx context.Context, rc *resty.Client, op, method, path string, configure func(*resty.Request)) (*resty.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, jerrors.NewNetworkError(op, err)
	}
	req := rc.R().SetContext(ctx)
	if configure != nil {
		configure(req)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, jerrors.NewNetworkError(op, err)
	}
	if code := resp.StatusCode(); code < 200 || code > 299 {
		ce := jerrors.NewHTTPError(op, code, resp.Body())
		if code == http.StatusNotFound {
			ce.Underlying = types.ErrNotFound
		}
		return nil, ce
	}
	return resp, nil
}

// decode parses a successful response body into T.
func decode[T any](op string, resp *resty.Response) (T, error) {
	var out T
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return out, jerrors.NewDecodeError(op, err)
	}
	return out, nil
}

// restyLogger routes resty's own diagnostics into zerolog.
type restyLogger struct{ l zerolog.Logger }

func (r restyLogger) Errorf(format string, v ...interface{}) { r.l.Error().Msgf(format, v...) }
func (r restyLogger) Warnf(format string, v ...interface{})  { r.l.Warn().Msgf(format, v...) }
func (r restyLogger) Debugf(format string, v ...interface{}) { r.l.Debug().Msgf(format, v...) }
