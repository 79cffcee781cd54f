package client

import (
	"context"
)

// executor serialises timeline writes per key.
type executor interface {
	Do(ctx context.Context, key string, fn func(context.Context) error) error
	Stop()
}
