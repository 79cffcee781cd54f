package types

import (
	"strings"
	"time"
)

// ------------------------------
// Core Domain Entities
// ------------------------------

// EntryType is the closed tag that decides which payload fields of an entry are meaningful.
type EntryType string

const (
	EntryText  EntryType = "text"
	EntryAudio EntryType = "audio"
	EntryPhoto EntryType = "photo"
	EntryVideo EntryType = "video"
	EntryStory EntryType = "story"
)

// Valid reports whether t is one of the known entry types.
func (t EntryType) Valid() bool {
	switch t {
	case EntryText, EntryAudio, EntryPhoto, EntryVideo, EntryStory:
		return true
	}
	return false
}

// Mood is an optional affect label. The empty string means no mood was recorded.
type Mood string

const (
	MoodHappy   Mood = "Happy"
	MoodCalm    Mood = "Calm"
	MoodNeutral Mood = "Neutral"
	MoodSad     Mood = "Sad"
	MoodAngry   Mood = "Angry"
)

// Valid reports whether m is empty or one of the five known moods.
func (m Mood) Valid() bool {
	switch m {
	case "", MoodHappy, MoodCalm, MoodNeutral, MoodSad, MoodAngry:
		return true
	}
	return false
}

// MediaType tags a media reference.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// MediaItem is a media reference: a URI, its type and an optional duration in seconds.
type MediaItem struct {
	URI      string    `json:"uri"`
	Type     MediaType `json:"type"`
	Duration *int      `json:"duration"`
}

// StoryPageSeparator joins the pages of a story into StoryContent.
const StoryPageSeparator = "\n\n---\n\n"

// Draft is a not-yet-persisted entry. Media fields may still hold local URIs.
type Draft struct {
	Type     EntryType `json:"type"`
	Mood     Mood      `json:"mood,omitempty"`
	Location string    `json:"location,omitempty"`
	Caption  string    `json:"caption,omitempty"`
	Content  string    `json:"content,omitempty"`

	// audio
	AudioURI      string `json:"audioUri,omitempty"`
	AudioDuration int    `json:"audioDuration,omitempty"`

	// photo; PhotoURI is the primary image and mirrors PhotoURIs[0] once persisted
	PhotoURI  string   `json:"photoUri,omitempty"`
	PhotoURIs []string `json:"photoUris,omitempty"`

	// video
	VideoURI      string `json:"videoUri,omitempty"`
	ThumbnailURI  string `json:"thumbnailUri,omitempty"`
	VideoDuration int    `json:"videoDuration,omitempty"`

	// story
	Title        string      `json:"title,omitempty"`
	StoryContent string      `json:"storyContent,omitempty"`
	PageCount    int         `json:"pageCount,omitempty"`
	StoryMedia   []MediaItem `json:"storyMedia,omitempty"`
}

// Photos returns the ordered photo references of a photo draft, falling back to
// the single PhotoURI when no list was given.
func (d Draft) Photos() []string {
	if len(d.PhotoURIs) > 0 {
		return d.PhotoURIs
	}
	if d.PhotoURI != "" {
		return []string{d.PhotoURI}
	}
	return nil
}

// Clone returns a copy of d that shares no slices with it.
func (d Draft) Clone() Draft {
	out := d
	if d.PhotoURIs != nil {
		out.PhotoURIs = append([]string(nil), d.PhotoURIs...)
	}
	if d.StoryMedia != nil {
		out.StoryMedia = make([]MediaItem, len(d.StoryMedia))
		for i, m := range d.StoryMedia {
			out.StoryMedia[i] = m
			if m.Duration != nil {
				v := *m.Duration
				out.StoryMedia[i].Duration = &v
			}
		}
	}
	return out
}

// Entry is a backend-confirmed journal item.
type Entry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Draft
}

// Clone returns a deep copy of e.
func (e Entry) Clone() Entry {
	out := e
	out.Draft = e.Draft.Clone()
	return out
}

// Pages splits the story content back into its pages.
func (e Entry) Pages() []string { return SplitStoryPages(e.StoryContent) }

// NewStoryDraft builds a story draft whose StoryContent and PageCount are derived from pages.
func NewStoryDraft(title string, pages []string, media []MediaItem) Draft {
	return Draft{
		Type:         EntryStory,
		Title:        title,
		StoryContent: JoinStoryPages(pages),
		PageCount:    len(pages),
		StoryMedia:   media,
	}
}

// JoinStoryPages concatenates pages with StoryPageSeparator.
func JoinStoryPages(pages []string) string {
	return strings.Join(pages, StoryPageSeparator)
}

// SplitStoryPages is the inverse of JoinStoryPages. Empty content yields no pages.
func SplitStoryPages(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(content, StoryPageSeparator)
}

// IsRemoteURI reports whether uri already points at durable remote storage.
func IsRemoteURI(uri string) bool {
	lower := strings.ToLower(uri)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
