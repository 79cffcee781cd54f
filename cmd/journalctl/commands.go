package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mycelian/mycelian-journal/client"
	"github.com/mycelian/mycelian-journal/internal/localstate"
	"github.com/mycelian/mycelian-journal/internal/media"
)

func newLoginCmd(a *app) *cobra.Command {
	var token, userID string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a session token for later commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := a.openSessions()
			if err != nil {
				return err
			}
			defer func() { _ = sessions.Close() }()

			if err := sessions.Save(cmd.Context(), localstate.Session{
				Token:   token,
				UserID:  userID,
				BaseURL: a.cfg.BaseURL,
			}); err != nil {
				return err
			}
			a.log.Debug().Str("user_id", userID).Msg("session saved")
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed in")
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Session token (required)")
	cmd.Flags().StringVar(&userID, "user-id", "", "User ID (optional)")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := a.openSessions()
			if err != nil {
				return err
			}
			defer func() { _ = sessions.Close() }()

			if err := sessions.Clear(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the newest page of the timeline as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTimeline(func(tl *client.Timeline) error {
				entries, err := tl.Refresh(cmd.Context())
				if err != nil {
					return err
				}
				b, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			})
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entry-id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTimeline(func(tl *client.Timeline) error {
				if err := tl.RemoveEntry(cmd.Context(), args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Entry deleted: %s\n", args[0])
				return nil
			})
		},
	}
}

// draftFlags are shared by every add sub-command.
type draftFlags struct {
	mood, location, caption string
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mood, "mood", "", "Happy, Calm, Neutral, Sad or Angry")
	cmd.Flags().StringVar(&f.location, "location", "", "Where the entry was written")
	cmd.Flags().StringVar(&f.caption, "caption", "", "Caption")
}

func (f *draftFlags) apply(d *client.Draft) {
	d.Mood = client.Mood(f.mood)
	d.Location = f.location
	d.Caption = f.caption
}

func newAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Save a new entry",
	}
	cmd.AddCommand(newAddTextCmd(a))
	cmd.AddCommand(newAddPhotoCmd(a))
	cmd.AddCommand(newAddAudioCmd(a))
	cmd.AddCommand(newAddVideoCmd(a))
	cmd.AddCommand(newAddStoryCmd(a))
	return cmd
}

// save uploads the draft's local media, creates the entry and prints its id.
func (a *app) save(cmd *cobra.Command, d client.Draft) error {
	return a.withTimeline(func(tl *client.Timeline) error {
		e, err := tl.AddEntry(cmd.Context(), d)
		if err != nil {
			return err
		}
		for _, u := range localRefs(e.Draft) {
			a.log.Warn().Str("uri", u).Msg("media kept its local uri; it will only render on this device")
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Entry saved: %s (%s)\n", e.ID, e.Type)
		return nil
	})
}

func newAddTextCmd(a *app) *cobra.Command {
	var f draftFlags
	var content string
	cmd := &cobra.Command{
		Use:   "text",
		Short: "Save a text entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			d := client.Draft{Type: client.EntryText, Content: content}
			f.apply(&d)
			return a.save(cmd, d)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&content, "content", "", "Entry text (required)")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func newAddPhotoCmd(a *app) *cobra.Command {
	var f draftFlags
	var photos []string
	cmd := &cobra.Command{
		Use:   "photo",
		Short: "Save a photo entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			uris, err := toURIs(photos)
			if err != nil {
				return err
			}
			d := client.Draft{Type: client.EntryPhoto, PhotoURIs: uris}
			f.apply(&d)
			return a.save(cmd, d)
		},
	}
	f.register(cmd)
	cmd.Flags().StringArrayVar(&photos, "photo", nil, "Image path or URL, repeat for several (required)")
	_ = cmd.MarkFlagRequired("photo")
	return cmd
}

func newAddAudioCmd(a *app) *cobra.Command {
	var f draftFlags
	var file string
	var duration int
	cmd := &cobra.Command{
		Use:   "audio",
		Short: "Save an audio entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			uri, err := toURI(file)
			if err != nil {
				return err
			}
			d := client.Draft{Type: client.EntryAudio, AudioURI: uri, AudioDuration: duration}
			f.apply(&d)
			return a.save(cmd, d)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&file, "file", "", "Recording path or URL (required)")
	cmd.Flags().IntVar(&duration, "duration", 0, "Length in seconds")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newAddVideoCmd(a *app) *cobra.Command {
	var f draftFlags
	var file, thumbnail string
	var duration int
	cmd := &cobra.Command{
		Use:   "video",
		Short: "Save a video entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			uri, err := toURI(file)
			if err != nil {
				return err
			}
			d := client.Draft{Type: client.EntryVideo, VideoURI: uri, VideoDuration: duration}
			if thumbnail != "" {
				if d.ThumbnailURI, err = toURI(thumbnail); err != nil {
					return err
				}
			}
			f.apply(&d)
			return a.save(cmd, d)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&file, "file", "", "Video path or URL (required)")
	cmd.Flags().StringVar(&thumbnail, "thumbnail", "", "Thumbnail image path or URL")
	cmd.Flags().IntVar(&duration, "duration", 0, "Length in seconds")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newAddStoryCmd(a *app) *cobra.Command {
	var f draftFlags
	var title string
	var pages, mediaPaths []string
	cmd := &cobra.Command{
		Use:   "story",
		Short: "Save a multi-page story",
		RunE: func(cmd *cobra.Command, args []string) error {
			items := make([]client.MediaItem, 0, len(mediaPaths))
			for _, p := range mediaPaths {
				uri, err := toURI(p)
				if err != nil {
					return err
				}
				items = append(items, client.MediaItem{URI: uri, Type: mediaTypeOf(uri)})
			}
			d := client.NewStoryDraft(title, pages, items)
			f.apply(&d)
			return a.save(cmd, d)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&title, "title", "", "Story title (required)")
	cmd.Flags().StringArrayVar(&pages, "page", nil, "Page text, repeat in reading order (required)")
	cmd.Flags().StringArrayVar(&mediaPaths, "media", nil, "Image, video or audio path or URL, repeatable")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("page")
	return cmd
}

// toURI turns a filesystem path into an absolute file:// URI. URIs are passed through.
func toURI(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", errors.New("empty media path")
	}
	if strings.Contains(p, "://") {
		return p, nil
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

func toURIs(ps []string) ([]string, error) {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		u, err := toURI(p)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func mediaTypeOf(uri string) client.MediaType {
	mt := media.GuessMIMEType(uri)
	switch {
	case strings.HasPrefix(mt, "video/"):
		return client.MediaVideo
	case strings.HasPrefix(mt, "audio/"):
		return client.MediaAudio
	}
	return client.MediaImage
}

// localRefs lists media references that are still local after a save.
func localRefs(d client.Draft) []string {
	var refs []string
	add := func(u string) {
		if u != "" && !client.IsRemoteURI(u) {
			refs = append(refs, u)
		}
	}
	add(d.AudioURI)
	add(d.VideoURI)
	add(d.ThumbnailURI)
	for _, u := range d.PhotoURIs {
		add(u)
	}
	for _, m := range d.StoryMedia {
		add(m.URI)
	}
	return refs
}
