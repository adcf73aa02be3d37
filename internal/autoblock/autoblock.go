// Package autoblock maintains machine-generated regions inside a document
// body. A region is fenced by HTML comments carrying a marker name; Upsert
// regenerates the interior while leaving surrounding prose untouched, so the
// application can rewrite its summary on every save without clobbering notes
// the user typed above or below it.
package autoblock

import (
	"fmt"
	"strings"
)

// StartMarker returns the opening fence for marker.
func StartMarker(marker string) string {
	return fmt.Sprintf("<!--AUTO:%s START-->", marker)
}

// EndMarker returns the closing fence for marker.
func EndMarker(marker string) string {
	return fmt.Sprintf("<!--AUTO:%s END-->", marker)
}

// Upsert replaces the interior of the marker's region in body with content,
// creating the region at the end of the body if it does not exist. Previous
// generated content is discarded, never duplicated, and the region keeps its
// position relative to the surrounding text.
func Upsert(body, marker, content string) string {
	start := StartMarker(marker)
	end := EndMarker(marker)
	block := start + "\n" + strings.TrimSpace(content) + "\n" + end

	startIdx := strings.Index(body, start)
	endIdx := strings.Index(body, end)

	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		before := strings.TrimSpace(body)
		if before == "" {
			return block
		}
		return before + "\n\n" + block
	}

	before := strings.TrimRight(body[:startIdx], " \t\n")
	after := strings.TrimLeft(body[endIdx+len(end):], " \t\n")

	parts := make([]string, 0, 3)
	if before != "" {
		parts = append(parts, before)
	}
	parts = append(parts, block)
	if after != "" {
		parts = append(parts, after)
	}
	return strings.Join(parts, "\n\n")
}

// Extract returns the current interior of the marker's region and whether the
// region exists.
func Extract(body, marker string) (string, bool) {
	start := StartMarker(marker)
	end := EndMarker(marker)

	startIdx := strings.Index(body, start)
	endIdx := strings.Index(body, end)
	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		return "", false
	}
	inner := body[startIdx+len(start) : endIdx]
	return strings.TrimSpace(inner), true
}
