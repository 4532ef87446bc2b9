package format

import (
	"fmt"
	"html"
)

// EscapeHTML escapes text for safe inclusion in Telegram HTML messages.
func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

// Bold wraps escaped text in <b> tags.
func Bold(text string) string {
	return "<b>" + EscapeHTML(text) + "</b>"
}

// CodeInt64 renders a numeric id in <code> tags.
func CodeInt64(v int64) string {
	return fmt.Sprintf("<code>%d</code>", v)
}
