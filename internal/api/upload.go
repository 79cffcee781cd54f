package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"

	jerrors "github.com/mycelian/mycelian-journal/internal/errors"
	"github.com/mycelian/mycelian-journal/internal/types"
)

// UploadMedia sends one file as multipart/form-data under the field "file" and
// returns the durable URL the backend stored it at. The request carries no JSON
// content type; resty sets the multipart boundary itself.
func UploadMedia(ctx context.Context, rc *resty.Client, fileName, mimeType string, content io.Reader) (string, error) {
	const op = "upload media"
	resp, err := do(ctx, rc, op, http.MethodPost, UploadPath, func(r *resty.Request) {
		r.SetMultipartField("file", fileName, mimeType, content)
	})
	if err != nil {
		return "", err
	}
	ur, err := decode[types.UploadResponse](op, resp)
	if err != nil {
		return "", err
	}
	if ur.URL == "" {
		return "", jerrors.NewDecodeError(op, fmt.Errorf("response has no url"))
	}
	return ur.URL, nil
}
