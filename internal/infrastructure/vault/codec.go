package vault

import (
	"strings"

	"github.com/digitalfte/taskvault/internal/core/domain"
)

// delimiter opens and closes the metadata header block. It must appear
// exactly twice, each on its own line, for a header to be recognized.
const delimiter = "---"

// ParseDocument splits raw file content into the ordered metadata block and
// the untouched body. Malformed headers never fail: anything that is not a
// well-formed delimiter block is treated as body with empty metadata.
func ParseDocument(raw string) (*domain.Metadata, string) {
	meta := domain.NewMetadata()
	if !strings.HasPrefix(raw, delimiter+"\n") {
		return meta, raw
	}
	rest := raw[len(delimiter)+1:]
	end := findClosingDelimiter(rest)
	if end < 0 {
		return meta, raw
	}
	for _, line := range strings.Split(rest[:end], "\n") {
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			// Stray line inside the block: the header is not trusted.
			return domain.NewMetadata(), raw
		}
		meta.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	// Body starts right after the closing delimiter's newline and is
	// preserved byte for byte.
	bodyStart := end + len(delimiter) + 1
	if bodyStart > len(rest) {
		return meta, ""
	}
	return meta, rest[bodyStart:]
}

// SerializeDocument re-emits the delimiter block followed by the body
// unchanged. An empty metadata block is skipped entirely, so
// ParseDocument(SerializeDocument(m, b)) round-trips for any (m, b) this
// codec produces.
func SerializeDocument(meta *domain.Metadata, body string) string {
	if meta.Len() == 0 {
		return body
	}
	var b strings.Builder
	b.WriteString(delimiter + "\n")
	for _, key := range meta.Keys() {
		b.WriteString(key + ": " + meta.Value(key) + "\n")
	}
	b.WriteString(delimiter + "\n")
	b.WriteString(body)
	return b.String()
}

// findClosingDelimiter locates a "---" alone on its line, returning the
// offset of that line or -1.
func findClosingDelimiter(s string) int {
	offset := 0
	for {
		idx := strings.Index(s[offset:], delimiter)
		if idx < 0 {
			return -1
		}
		idx += offset
		lineStart := idx == 0 || s[idx-1] == '\n'
		lineEnd := idx+len(delimiter) == len(s) || s[idx+len(delimiter)] == '\n'
		if lineStart && lineEnd {
			return idx
		}
		offset = idx + len(delimiter)
	}
}
