package export

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/ziadkadry99/newsletter-kit/internal/markdown"
)

// InstructionsPage renders the setup guide as a standalone HTML page. The
// guide carries brand values, so raw HTML in it is dropped.
func InstructionsPage(brand, guide string) (string, error) {
	body, err := markdown.RenderSafe(guide)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = pageTmpl.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{
		Title: brand + " - Setup Instructions",
		Body:  template.HTML(body),
	})
	if err != nil {
		return "", fmt.Errorf("rendering page: %w", err)
	}
	return buf.String(), nil
}

var pageTmpl = template.Must(template.New("instructions").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{ .Title }}</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 860px; margin: 40px auto; padding: 0 20px; color: #24292f; line-height: 1.6; }
    code { background: #f6f8fa; padding: 2px 5px; border-radius: 4px; }
    table { border-collapse: collapse; margin: 16px 0; }
    th, td { border: 1px solid #d0d7de; padding: 6px 12px; text-align: left; }
    h2 { border-bottom: 1px solid #d0d7de; padding-bottom: 6px; margin-top: 32px; }
  </style>
</head>
<body>
{{ .Body }}
</body>
</html>
`))
