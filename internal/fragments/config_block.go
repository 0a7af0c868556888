package fragments

import "github.com/ziadkadry99/newsletter-kit/internal/config"

const configTemplate = `// ===== CONFIGURATION =====
// Built once at load time. Secrets are not stored here; see the
// credential accessors below.
const CONFIG = {
  SHEET_NAME: 'Subscribers',
  EVENT_LOG_SHEET: 'EventLog',
  TOKENS_SHEET: 'Tokens',
{{- if .AutoProvision }}
  SHEET_ID: null, // a spreadsheet is created automatically on first run
{{- else }}
  SHEET_ID: {{ lit .SheetRef }},
{{- end }}
  BRAND_NAME: {{ lit .BrandName }},
  BRAND_BIO: {{ lit .BrandBio }},
  BRAND_VOICE: {{ lit .BrandVoice }},
  SAMPLE_CONTENT: {{ lit .SampleContent }},
  FROM_NAME: {{ lit .BrandName }},
  PRIMARY_PROVIDER: {{ lit .Provider }},
  PROVIDER_PRIORITY: {{ json .Priority }},
  TEMPLATE: {{ lit .TemplateKey }},
  FREQUENCY: {{ lit .Cadence }},
  WARMUP_MODE: {{ .Warmup }},
  WARMUP_DELAY_MS: 2000,
  TOKEN_TTL_HOURS: 24,
  ENABLE_VERIFICATION: {{ .Verification }},
  ENABLE_GMAIL_DETECTION: {{ .Gmail }},
  ENABLE_AI: {{ .AI }}
};
`

var configTmpl = parse("config", configTemplate)

// ConfigBlock emits the CONFIG constant. Every brand value is written as
// an escaped backtick literal.
func ConfigBlock(b config.Brand) Fragment {
	return Fragment{
		Name:     "config",
		Live:     true,
		Text:     render(configTmpl, b),
		Provides: []string{"CONFIG"},
	}
}
