// Package mapper converts between the local, per-type entry shape and the
// normalized wire representation used by the timeline endpoints.
//
// Both directions are pure: no I/O, no shared state. Malformed responses are not
// rejected here; missing fields simply map to zero values.
package mapper

import "github.com/mycelian/mycelian-journal/internal/types"

// ToWireDraft flattens d into the create payload. Only the fields meaningful for
// d.Type are populated; every other optional field stays nil and encodes as null.
func ToWireDraft(d types.Draft) types.CreateEntryPayload {
	p := types.CreateEntryPayload{
		Type:     d.Type,
		Location: optString(d.Location),
		Caption:  optString(d.Caption),
		Content:  optString(d.Content),
	}
	if d.Mood != "" {
		m := d.Mood
		p.Mood = &m
	}

	switch d.Type {
	case types.EntryAudio:
		p.AudioURI = optString(d.AudioURI)
		p.AudioDuration = intPtr(d.AudioDuration)
	case types.EntryPhoto:
		photos := d.Photos()
		if len(photos) > 0 {
			p.PhotoURIs = append([]string(nil), photos...)
			// single-image consumers read photoUri
			p.PhotoURI = optString(photos[0])
		}
	case types.EntryVideo:
		p.VideoURI = optString(d.VideoURI)
		p.ThumbnailURI = optString(d.ThumbnailURI)
		p.VideoDuration = intPtr(d.VideoDuration)
	case types.EntryStory:
		p.Title = optString(d.Title)
		p.StoryContent = optString(d.StoryContent)
		p.PageCount = intPtr(d.PageCount)
		if len(d.StoryMedia) > 0 {
			p.StoryMedia = d.Clone().StoryMedia
		}
	}
	return p
}

// FromWireResponse reshapes a persisted entry into the local per-type shape.
func FromWireResponse(r types.EntryResponse) types.Entry {
	e := types.Entry{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Draft: types.Draft{
			Type:          r.Type,
			Location:      str(r.Location),
			Caption:       str(r.Caption),
			Content:       str(r.Content),
			AudioURI:      str(r.AudioURI),
			AudioDuration: num(r.AudioDuration),
			VideoURI:      str(r.VideoURI),
			ThumbnailURI:  str(r.ThumbnailURI),
			VideoDuration: num(r.VideoDuration),
			Title:         str(r.Title),
			StoryContent:  str(r.StoryContent),
			PageCount:     num(r.PageCount),
		},
	}
	if r.Mood != nil {
		e.Mood = *r.Mood
	}

	switch r.Type {
	case types.EntryPhoto:
		var uris []string
		for _, m := range r.Media {
			uris = append(uris, m.URI)
		}
		if len(uris) == 0 && len(r.PhotoURIs) > 0 {
			uris = append(uris, r.PhotoURIs...)
		}
		if len(uris) == 0 && r.PhotoURI != nil && *r.PhotoURI != "" {
			uris = []string{*r.PhotoURI}
		}
		if len(uris) > 0 {
			e.PhotoURIs = uris
			e.PhotoURI = uris[0]
		}
	case types.EntryStory:
		items := r.Media
		if len(items) == 0 {
			items = r.StoryMedia
		}
		if len(items) > 0 {
			e.StoryMedia = types.Draft{StoryMedia: items}.Clone().StoryMedia
		}
	}
	return e
}

// FromWireResponses maps a list response, preserving order.
func FromWireResponses(rs []types.EntryResponse) []types.Entry {
	out := make([]types.Entry, 0, len(rs))
	for _, r := range rs {
		out = append(out, FromWireResponse(r))
	}
	return out
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func intPtr(v int) *int { return &v }

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func num(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
