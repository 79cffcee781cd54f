package types

import (
	"errors"
	"fmt"
	"strings"
)

// ------------------------------
// Shared Errors
// ------------------------------

// ErrNotFound is returned when the backend has no entry with the requested id.
var ErrNotFound = errors.New("entry not found")

// ErrInvalidDraft wraps every draft validation failure.
var ErrInvalidDraft = errors.New("invalid draft")

// ------------------------------
// Validation
// ------------------------------

// ValidateDraft checks that d carries the payload its type requires.
// Media URIs may still be local; only their presence is checked.
func ValidateDraft(d Draft) error {
	if !d.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidDraft, d.Type)
	}
	if !d.Mood.Valid() {
		return fmt.Errorf("%w: unknown mood %q", ErrInvalidDraft, d.Mood)
	}
	switch d.Type {
	case EntryAudio:
		if strings.TrimSpace(d.AudioURI) == "" {
			return fmt.Errorf("%w: audio entry requires audioUri", ErrInvalidDraft)
		}
		if d.AudioDuration < 0 {
			return fmt.Errorf("%w: negative audioDuration", ErrInvalidDraft)
		}
	case EntryPhoto:
		photos := d.Photos()
		if len(photos) == 0 {
			return fmt.Errorf("%w: photo entry requires at least one photo", ErrInvalidDraft)
		}
		for i, p := range photos {
			if strings.TrimSpace(p) == "" {
				return fmt.Errorf("%w: photoUris[%d] is empty", ErrInvalidDraft, i)
			}
		}
	case EntryVideo:
		if strings.TrimSpace(d.VideoURI) == "" {
			return fmt.Errorf("%w: video entry requires videoUri", ErrInvalidDraft)
		}
		if d.VideoDuration < 0 {
			return fmt.Errorf("%w: negative videoDuration", ErrInvalidDraft)
		}
	case EntryStory:
		if d.PageCount < 0 {
			return fmt.Errorf("%w: negative pageCount", ErrInvalidDraft)
		}
		for i, m := range d.StoryMedia {
			if strings.TrimSpace(m.URI) == "" {
				return fmt.Errorf("%w: storyMedia[%d] has no uri", ErrInvalidDraft, i)
			}
			if m.Type != MediaImage && m.Type != MediaVideo {
				return fmt.Errorf("%w: storyMedia[%d] type %q", ErrInvalidDraft, i, m.Type)
			}
		}
	}
	return nil
}

// ValidateEntryID ensures the id is present.
func ValidateEntryID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("entryId is required")
	}
	return nil
}
