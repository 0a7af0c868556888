// Package escape holds the string escapers applied to brand values before
// they are interpolated into generated HTML, script literals and comments.
package escape

import "strings"

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// HTML replaces the five markup-significant characters with entities.
// An empty input yields an empty string.
func HTML(text string) string {
	if text == "" {
		return ""
	}
	return htmlReplacer.Replace(text)
}

// EmbeddedLiteral escapes text for use inside a backtick-delimited script
// literal. Backslashes are escaped first so the backslashes introduced for
// backticks and "${" are not doubled.
func EmbeddedLiteral(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, "`", "\\`")
	text = strings.ReplaceAll(text, "${", `\${`)
	return text
}

// Comment makes text safe to place on a single line of a block comment.
func Comment(text string) string {
	text = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text)
	return strings.ReplaceAll(text, "*/", `*\/`)
}
