package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/mycelian/mycelian-journal/internal/types"
)

// CreateEntry persists a fully resolved payload and returns the backend's normalized entry.
func CreateEntry(ctx context.Context, rc *resty.Client, payload types.CreateEntryPayload) (*types.EntryResponse, error) {
	const op = "create entry"
	resp, err := do(ctx, rc, op, http.MethodPost, TimelinePath, func(r *resty.Request) {
		r.SetHeader("Content-Type", "application/json").SetBody(payload)
	})
	if err != nil {
		return nil, err
	}
	er, err := decode[types.EntryResponse](op, resp)
	if err != nil {
		return nil, err
	}
	return &er, nil
}

// ListEntries fetches one page of the timeline, newest first as the backend orders it.
func ListEntries(ctx context.Context, rc *resty.Client, params types.ListEntriesParams) ([]types.EntryResponse, error) {
	const op = "list entries"
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	resp, err := do(ctx, rc, op, http.MethodGet, TimelinePath, func(r *resty.Request) {
		r.SetQueryParams(map[string]string{
			"limit":  strconv.Itoa(limit),
			"offset": strconv.Itoa(offset),
		})
	})
	if err != nil {
		return nil, err
	}
	return decode[[]types.EntryResponse](op, resp)
}

// DeleteEntry removes an entry by id. No response body is expected.
func DeleteEntry(ctx context.Context, rc *resty.Client, entryID string) error {
	if err := types.ValidateEntryID(entryID); err != nil {
		return err
	}
	_, err := do(ctx, rc, "delete entry", http.MethodDelete, TimelineIDPath, func(r *resty.Request) {
		r.SetPathParam("id", entryID)
	})
	return err
}
