package staticd

import "strings"

// mimeTypes is the closed extension-to-content-type table §6 specifies,
// deliberately not delegating to Go's mime.TypeByExtension: that function
// consults the host's /etc/mime.types and OS registry, which makes its
// output host-dependent — exactly what a closed table in the spec is
// meant to avoid.
var mimeTypes = map[string]string{
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".txt":  "text/plain",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/vnd.microsoft.icon",
}

const defaultMimeType = "application/octet-stream"

// mimeTypeForPath returns the content type for path's extension,
// case-insensitively, falling back to defaultMimeType.
func mimeTypeForPath(path string) string {
	dot := strings.LastIndexByte(path, '.')
	if dot < 0 {
		return defaultMimeType
	}
	ext := strings.ToLower(path[dot:])
	if ct, ok := mimeTypes[ext]; ok {
		return ct
	}
	return defaultMimeType
}
