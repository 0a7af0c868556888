// Package markdown renders GitHub-flavored markdown to HTML.
package markdown

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

func newMarkdown(opts ...renderer.Option) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(opts...),
	)
}

var (
	trusted   = newMarkdown(html.WithUnsafe())
	untrusted = newMarkdown()
)

// Render converts src to an HTML fragment. Raw HTML in src is kept, so src
// must come from a trusted source such as the configured model.
func Render(src string) (string, error) {
	return convert(trusted, src)
}

// RenderSafe converts src to an HTML fragment, dropping raw HTML and
// links with dangerous URL schemes. Use it for text that embeds
// configuration values.
func RenderSafe(src string) (string, error) {
	return convert(untrusted, src)
}

func convert(md goldmark.Markdown, src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}

var outerFence = regexp.MustCompile("(?s)^\\s*```[a-zA-Z]*\\n(.*?)\\n?```\\s*$")

// Unfence strips a single code fence wrapping the whole of s, which models
// often add around an HTML or markdown answer.
func Unfence(s string) string {
	if m := outerFence.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}
