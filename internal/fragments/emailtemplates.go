package fragments

import (
	"strings"

	"github.com/ziadkadry99/newsletter-kit/internal/config"
	"github.com/ziadkadry99/newsletter-kit/internal/escape"
)

// Placeholders substituted into an email wrapper.
const (
	PlaceholderContent = "%%CONTENT%%"
	PlaceholderBrand   = "%%BRAND_NAME%%"
)

type wrapper struct {
	Key   string
	Lines []string
}

// wrappers are shared by the generated getEmailTemplate and Wrap, so a
// preview rendered locally matches what the deployed script sends.
var wrappers = []wrapper{
	{Key: string(config.TemplateNewsletter), Lines: []string{
		`<!DOCTYPE html>`,
		`<html>`,
		`<body style="margin: 0; padding: 0; background: #f4f4f7; font-family: Arial, sans-serif;">`,
		`  <div style="max-width: 600px; margin: 0 auto; background: #ffffff;">`,
		`    <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 30px; text-align: center;">`,
		`      <h1 style="color: #ffffff; margin: 0;">%%BRAND_NAME%%</h1>`,
		`    </div>`,
		`    <div style="padding: 30px; line-height: 1.6; color: #333;">%%CONTENT%%</div>`,
		`    <div style="padding: 20px; text-align: center; font-size: 12px; color: #999;">`,
		`      You're receiving this because you subscribed to %%BRAND_NAME%%.`,
		`    </div>`,
		`  </div>`,
		`</body>`,
		`</html>`,
	}},
	{Key: string(config.TemplateStory), Lines: []string{
		`<!DOCTYPE html>`,
		`<html>`,
		`<body style="margin: 0; padding: 0; background: #fdfaf6; font-family: Georgia, serif;">`,
		`  <div style="max-width: 560px; margin: 0 auto; padding: 40px 24px; color: #2d2d2d; line-height: 1.8; font-size: 17px;">`,
		`    <p style="font-style: italic; color: #8a7f72; margin-top: 0;">A note from %%BRAND_NAME%%</p>`,
		`    %%CONTENT%%`,
		`    <p style="margin-top: 40px;">Until next time,<br>%%BRAND_NAME%%</p>`,
		`  </div>`,
		`</body>`,
		`</html>`,
	}},
	{Key: string(config.TemplateMinimal), Lines: []string{
		`<!DOCTYPE html>`,
		`<html>`,
		`<body style="font-family: -apple-system, BlinkMacSystemFont, sans-serif; line-height: 1.6; color: #222;">`,
		`  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">`,
		`    %%CONTENT%%`,
		`    <hr style="border: none; border-top: 1px solid #eee; margin: 30px 0 10px;">`,
		`    <p style="font-size: 12px; color: #999;">%%BRAND_NAME%%</p>`,
		`  </div>`,
		`</body>`,
		`</html>`,
	}},
}

// Wrap applies the email wrapper for t to content, mirroring the generated
// getEmailTemplate. Unknown templates use the newsletter layout.
func Wrap(t config.Template, brandName, content string) string {
	lines := wrappers[0].Lines
	for _, w := range wrappers {
		if w.Key == string(t) {
			lines = w.Lines
			break
		}
	}
	out := strings.Join(lines, "\n")
	out = strings.ReplaceAll(out, PlaceholderBrand, escape.HTML(brandName))
	return strings.ReplaceAll(out, PlaceholderContent, content)
}

const emailTemplatesTemplate = `// ===== EMAIL TEMPLATES =====
// Wrappers for newsletter content. %%CONTENT%% and %%BRAND_NAME%% are
// replaced by getEmailTemplate.
const EMAIL_TEMPLATES = {
{{- range $i, $w := .Wrappers }}{{ if $i }},{{ end }}
  {{ $w.Key }}: [
{{- range $j, $line := $w.Lines }}{{ if $j }},{{ end }}
    {{ js $line }}
{{- end }}
  ].join('\n')
{{- end }}
};

function escapeHtml(text) {
  return String(text == null ? '' : text)
    .replace(/&/g, '&amp;')
    .replace(/</g, '&lt;')
    .replace(/>/g, '&gt;')
    .replace(/"/g, '&quot;')
    .replace(/'/g, '&#039;');
}

/**
 * Wraps content in the configured template. Unknown template names fall
 * back to the newsletter layout.
 */
function getEmailTemplate(content) {
  const template = EMAIL_TEMPLATES[CONFIG.TEMPLATE] || EMAIL_TEMPLATES.newsletter;
  return template
    .split('%%BRAND_NAME%%').join(escapeHtml(CONFIG.BRAND_NAME))
    .split('%%CONTENT%%').join(content || '');
}
`

var emailTemplatesTmpl = parse("templates", emailTemplatesTemplate)

// EmailTemplates emits the email wrappers and the selector keyed by
// CONFIG.TEMPLATE.
func EmailTemplates(b config.Brand) Fragment {
	return Fragment{
		Name:     "templates",
		Live:     true,
		Text:     render(emailTemplatesTmpl, b),
		Provides: []string{"EMAIL_TEMPLATES", "escapeHtml", "getEmailTemplate"},
		Requires: []string{"CONFIG"},
	}
}
