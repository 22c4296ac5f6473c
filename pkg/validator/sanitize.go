package validator

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText strips every tag from free text typed by users and normalizes whitespace.
func SanitizeText(content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")

	clean := html.UnescapeString(strictPolicy.Sanitize(content))
	return strings.Join(strings.Fields(clean), " ")
}

// SanitizeOptional returns nil when nothing is left after sanitizing.
func SanitizeOptional(content string) *string {
	clean := SanitizeText(content)
	if clean == "" {
		return nil
	}
	return &clean
}
