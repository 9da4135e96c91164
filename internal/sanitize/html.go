// Package sanitize strips unsafe HTML from user-submitted text.
package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

var (
	// strictPolicy removes all HTML tags and attributes. Applied to titles,
	// which are rendered as plain text.
	strictPolicy = bluemonday.StrictPolicy()

	// ugcPolicy allows safe user-generated content with basic formatting.
	// Applied to notes, where markup like <b> or <em> is acceptable.
	ugcPolicy = bluemonday.UGCPolicy()
)

// Text strips all HTML tags and returns plain text.
func Text(input string) string {
	return strictPolicy.Sanitize(input)
}

// HTML sanitizes content while keeping safe formatting tags. Removes
// <script>, <iframe>, event handlers, and style attributes.
func HTML(input string) string {
	return ugcPolicy.Sanitize(input)
}
