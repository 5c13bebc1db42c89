package staticd

import (
	"html"
	"os"
	"sort"
)

// renderDirListing builds the directory listing body for uri/entries, in
// the exact markup §6 specifies. Grounded on
// original_source/src/http_router.c's handle_dir_request, but built with a
// pooled, auto-growing bytebufferpool.ByteBuffer instead of the C source's
// manual realloc-doubling of a char*, the same technique fs.go's
// createDirIndex uses for fasthttp's own directory listings.
func renderDirListing(uri string, entries []os.DirEntry) []byte {
	buf := acquireOutBuf()
	defer releaseOutBuf(buf)

	escapedURI := html.EscapeString(uri)
	buf.B = append(buf.B, "<html><head><title>Index of "...)
	buf.B = append(buf.B, escapedURI...)
	buf.B = append(buf.B, "</title></head><body><h1>Index of "...)
	buf.B = append(buf.B, escapedURI...)
	buf.B = append(buf.B, "</h1><hr><ul>"...)

	if uri != "/" {
		buf.B = append(buf.B, `<li><a href="..">..</a></li>`...)
	}

	names := make([]string, 0, len(entries))
	isDir := make(map[string]bool, len(entries))
	for _, e := range entries {
		name := e.Name()
		if name == "." || name == ".." {
			continue
		}
		names = append(names, name)
		isDir[name] = e.IsDir()
	}
	sort.Strings(names)

	for _, name := range names {
		suffix := ""
		if isDir[name] {
			suffix = "/"
		}
		escapedName := html.EscapeString(name)
		buf.B = append(buf.B, `<li><a href="`...)
		buf.B = append(buf.B, escapedName...)
		buf.B = append(buf.B, suffix...)
		buf.B = append(buf.B, `">`...)
		buf.B = append(buf.B, escapedName...)
		buf.B = append(buf.B, suffix...)
		buf.B = append(buf.B, "</a></li>"...)
	}

	buf.B = append(buf.B, "</ul><hr></body></html>"...)

	out := make([]byte, len(buf.B))
	copy(out, buf.B)
	return out
}
