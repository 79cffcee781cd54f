package client

import "github.com/mycelian/mycelian-journal/internal/types"

// Public type aliases so SDK consumers can import only the client package.
type (
	// Domain entities
	Entry     = types.Entry
	Draft     = types.Draft
	MediaItem = types.MediaItem
	EntryType = types.EntryType
	Mood      = types.Mood
	MediaType = types.MediaType

	// Wire shapes
	CreateEntryPayload = types.CreateEntryPayload
	ListEntriesParams  = types.ListEntriesParams
	EntryResponse      = types.EntryResponse
)

const (
	EntryText  = types.EntryText
	EntryAudio = types.EntryAudio
	EntryPhoto = types.EntryPhoto
	EntryVideo = types.EntryVideo
	EntryStory = types.EntryStory

	MoodHappy   = types.MoodHappy
	MoodCalm    = types.MoodCalm
	MoodNeutral = types.MoodNeutral
	MoodSad     = types.MoodSad
	MoodAngry   = types.MoodAngry

	MediaImage = types.MediaImage
	MediaVideo = types.MediaVideo
	MediaAudio = types.MediaAudio
)

// NewStoryDraft builds a story draft from its pages.
func NewStoryDraft(title string, pages []string, media []MediaItem) Draft {
	return types.NewStoryDraft(title, pages, media)
}

// IsRemoteURI reports whether uri is already served over http(s).
func IsRemoteURI(uri string) bool { return types.IsRemoteURI(uri) }
