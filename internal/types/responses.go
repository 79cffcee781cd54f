package types

import "time"

// ------------------------------
// Response Types
// ------------------------------

// EntryResponse is a persisted entry as the backend returns it: the create payload
// plus the server-assigned id and createdAt and a normalized media array.
type EntryResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	CreateEntryPayload
	Media []MediaItem `json:"media"`
}

// UploadResponse is returned by POST /api/upload.
type UploadResponse struct {
	URL string `json:"url"`
}

// ErrorResponse is the error body the backend sends with non-2xx statuses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
