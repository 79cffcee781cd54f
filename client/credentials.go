package client

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
)

// CredentialSource supplies the session credential. It is consulted on every
// request so a sign-in or sign-out takes effect immediately.
type CredentialSource interface {
	Credential(ctx context.Context) (string, error)
}

// CredentialFunc adapts a function to a CredentialSource.
type CredentialFunc func(ctx context.Context) (string, error)

// Credential implements CredentialSource.
func (f CredentialFunc) Credential(ctx context.Context) (string, error) { return f(ctx) }

// StaticCredential always returns token.
func StaticCredential(token string) CredentialSource {
	return CredentialFunc(func(context.Context) (string, error) { return token, nil })
}

// credentialTransport adds "Authorization: Bearer <token>" to each request.
// With no token the request goes out as-is and the backend's auth error is
// returned like any other failure.
type credentialTransport struct {
	base   http.RoundTripper
	source CredentialSource
	log    zerolog.Logger
}

func (t *credentialTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.source.Credential(req.Context())
	if err != nil {
		t.log.Warn().Err(err).Msg("reading session credential failed, sending request without it")
		token = ""
	}
	if token == "" {
		return t.base.RoundTrip(req)
	}
	cloned := req.Clone(req.Context())
	cloned.Header.Set("Authorization", "Bearer "+token)
	return t.base.RoundTrip(cloned)
}
