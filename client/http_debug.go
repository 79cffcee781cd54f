package client

import (
	"net/http"
	"net/http/httputil"
	"os"

	"github.com/rs/zerolog"
)

// debugTransport dumps every request and response at debug level.
//
// Enable it with WithDebugLogging, or without code changes by setting
// JOURNAL_DEBUG=true or DEBUG=true. Dumps contain full bodies and the
// Authorization header, so keep it to development machines.
//
// Multipart upload bodies are dumped as well; expect large log lines when
// photos or video are saved.
type debugTransport struct {
	base http.RoundTripper
	log  *zerolog.Logger
}

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := dt.base
	if base == nil {
		base = http.DefaultTransport
	}
	l := dt.logger()

	if reqDump, err := httputil.DumpRequestOut(req, true); err == nil {
		l.Debug().Str("method", req.Method).Str("url", req.URL.String()).Str("request_dump", string(reqDump)).Msg("HTTP request")
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		l.Error().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("HTTP request failed")
		return nil, err
	}

	if respDump, err := httputil.DumpResponse(resp, true); err == nil {
		l.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("status_code", resp.StatusCode).Str("response_dump", string(respDump)).Msg("HTTP response")
	}
	return resp, nil
}

func (dt *debugTransport) logger() *zerolog.Logger {
	if dt.log == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return dt.log
}

// debugLoggingRequested reports whether JOURNAL_DEBUG or DEBUG is "true".
func debugLoggingRequested() bool {
	return os.Getenv("JOURNAL_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}
