package types

// ------------------------------
// Request Types
// ------------------------------

// CreateEntryPayload is the body of POST /api/timeline. Absent optional fields are
// encoded as null, never omitted, so none of the fields carry omitempty.
type CreateEntryPayload struct {
	Type     EntryType `json:"type"`
	Mood     *Mood     `json:"mood"`
	Location *string   `json:"location"`
	Caption  *string   `json:"caption"`
	Content  *string   `json:"content"`

	AudioURI      *string `json:"audioUri"`
	AudioDuration *int    `json:"audioDuration"`

	PhotoURI  *string  `json:"photoUri"`
	PhotoURIs []string `json:"photoUris"`

	VideoURI      *string `json:"videoUri"`
	ThumbnailURI  *string `json:"thumbnailUri"`
	VideoDuration *int    `json:"videoDuration"`

	Title        *string     `json:"title"`
	StoryContent *string     `json:"storyContent"`
	PageCount    *int        `json:"pageCount"`
	StoryMedia   []MediaItem `json:"storyMedia"`
}

// ListEntriesParams selects a page of the timeline.
type ListEntriesParams struct {
	Limit  int
	Offset int
}
