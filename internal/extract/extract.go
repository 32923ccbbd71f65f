// Package extract derives searchable text and preview snippets from content payloads.
package extract

import (
	"strings"

	"github.com/contentarch/semstore/internal/models"
)

const (
	// TextBudget caps the searchable text derived from a payload.
	TextBudget = 8000
	// PreviewLength is the length of the snippet exposed on search results.
	PreviewLength = 200
)

// DefaultTitle is used when a payload carries no title.
const DefaultTitle = "Untitled"

// SearchableText flattens a payload into the text used for embedding and
// previews. Extraction order: data title, data summary, then each section's
// title and content; payloads without a data block fall back to Content and
// then Text. Parts are joined by single spaces and the result is capped at
// TextBudget characters.
func SearchableText(p *models.ContentPayload) string {
	if p == nil {
		return ""
	}
	var parts []string
	if p.Data != nil {
		if p.Data.Title != "" {
			parts = append(parts, p.Data.Title)
		}
		if p.Data.Summary != "" {
			parts = append(parts, p.Data.Summary)
		}
		for _, s := range p.Data.Sections {
			if s.Title != "" {
				parts = append(parts, s.Title)
			}
			if s.Content != "" {
				parts = append(parts, s.Content)
			}
		}
	}
	if len(parts) == 0 && p.Content != "" {
		parts = append(parts, p.Content)
	}
	if len(parts) == 0 && p.Text != "" {
		parts = append(parts, p.Text)
	}
	return truncateRunes(strings.Join(parts, " "), TextBudget)
}

// truncateRunes cuts s after max characters, never splitting a rune.
func truncateRunes(s string, max int) string {
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}

// Title returns the display title for a payload, defaulting to DefaultTitle.
func Title(p *models.ContentPayload) string {
	if p != nil && p.Data != nil && p.Data.Title != "" {
		return p.Data.Title
	}
	return DefaultTitle
}

// ContentType returns the payload's content type tag, or the empty string.
func ContentType(p *models.ContentPayload) string {
	if p != nil && p.Data != nil {
		return p.Data.ContentType
	}
	return ""
}

// Preview returns the first PreviewLength characters of text, with an
// ellipsis when truncated.
func Preview(text string) string {
	truncated := truncateRunes(text, PreviewLength)
	if truncated == text {
		return text
	}
	return truncated + "..."
}
