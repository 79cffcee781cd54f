package media

import (
	"net/url"
	"path"
	"strings"
)

// DefaultMIMEType is sent for files whose extension is not in mimeByExt.
const DefaultMIMEType = "application/octet-stream"

// mimeByExt covers the formats a phone camera, screen recorder or voice recorder
// produces. It is deliberately static: the backend trusts the declared type.
var mimeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heif",
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".3gp":  "video/3gpp",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".caf":  "audio/x-caf",
	".ogg":  "audio/ogg",
}

// GuessMIMEType maps the extension of uri to a MIME type.
func GuessMIMEType(uri string) string {
	ext := strings.ToLower(path.Ext(FileName(uri)))
	if mt, ok := mimeByExt[ext]; ok {
		return mt
	}
	return DefaultMIMEType
}

// LocalPath turns a file:// URI into a filesystem path. Bare paths are returned as-is.
func LocalPath(uri string) string {
	if strings.HasPrefix(strings.ToLower(uri), "file:") {
		if u, err := url.Parse(uri); err == nil && u.Path != "" {
			return u.Path
		}
		return strings.TrimPrefix(uri[len("file:"):], "//")
	}
	return uri
}

// FileName is the last path element of uri, used as the multipart file name.
func FileName(uri string) string {
	p := LocalPath(uri)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return path.Base(p)
}
