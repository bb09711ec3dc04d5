// Package mimetype resolves the Content-Type a website object is served with.
package mimetype

import (
	"mime"
	"path"
	"strings"
)

// Default is returned for keys whose extension has no known mapping.
const Default = "text/plain"

// web pins the types browsers are picky about, so the result does not depend
// on the mime.types files installed on the host.
var web = map[string]string{
	".css":         "text/css",
	".csv":         "text/csv",
	".gif":         "image/gif",
	".htm":         "text/html",
	".html":        "text/html",
	".ico":         "image/vnd.microsoft.icon",
	".jpeg":        "image/jpeg",
	".jpg":         "image/jpeg",
	".js":          "text/javascript",
	".json":        "application/json",
	".map":         "application/json",
	".mjs":         "text/javascript",
	".pdf":         "application/pdf",
	".png":         "image/png",
	".svg":         "image/svg+xml",
	".txt":         "text/plain",
	".wasm":        "application/wasm",
	".webmanifest": "application/manifest+json",
	".webp":        "image/webp",
	".woff":        "font/woff",
	".woff2":       "font/woff2",
	".xml":         "text/xml",
}

// ContentType returns the MIME type for key based on its extension, without
// parameters such as charset. Keys always use forward slashes.
func ContentType(key string) string {
	ext := strings.ToLower(path.Ext(key))
	if ext == "" {
		return Default
	}

	if t, ok := web[ext]; ok {
		return t
	}

	if t := mime.TypeByExtension(ext); t != "" {
		if mediaType, _, err := mime.ParseMediaType(t); err == nil {
			return mediaType
		}
	}

	return Default
}
