// Package imagelink turns provider sharing links into URLs that can be
// fetched directly.
package imagelink

import (
	"fmt"
	"regexp"
	"strings"
)

var driveFile = regexp.MustCompile(`drive\.google\.com/file/d/([a-zA-Z0-9_-]+)`)

// Normalize maps a Google Drive file sharing link to its direct view URL.
// Anything it does not recognise is returned unchanged.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if m := driveFile.FindStringSubmatch(trimmed); len(m) == 2 {
		return fmt.Sprintf("https://drive.google.com/uc?export=view&id=%s", m[1])
	}
	return raw
}
