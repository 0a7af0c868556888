package config

import "strings"

// EmailProvider identifies a transactional email service the generated
// script can send through.
type EmailProvider string

const (
	ProviderSendPulse  EmailProvider = "sendpulse"
	ProviderBrevo      EmailProvider = "brevo"
	ProviderResend     EmailProvider = "resend"
	ProviderMailgun    EmailProvider = "mailgun"
	ProviderMailerSend EmailProvider = "mailersend"
	ProviderSendGrid   EmailProvider = "sendgrid"
	ProviderGmail      EmailProvider = "gmail"
)

// Template selects the HTML wrapper used for outgoing newsletters.
type Template string

const (
	TemplateNewsletter Template = "newsletter"
	TemplateStory      Template = "story"
	TemplateMinimal    Template = "minimal"
)

// LLMProvider identifies the provider used by the preview command.
type LLMProvider string

const (
	LLMGoogle LLMProvider = "google"
	LLMOpenAI LLMProvider = "openai"
)

// Brand is the generator input. Generators receive it by value.
type Brand struct {
	BrandName     string        `yaml:"brand_name" koanf:"brand_name"`
	BrandBio      string        `yaml:"brand_bio" koanf:"brand_bio"`
	BrandVoice    string        `yaml:"brand_voice" koanf:"brand_voice"`
	SampleContent string        `yaml:"sample_content" koanf:"sample_content"`
	EmailProvider EmailProvider `yaml:"email_provider" koanf:"email_provider"`
	SenderEmail   string        `yaml:"sender_email" koanf:"sender_email"`
	Template      Template      `yaml:"template" koanf:"template"`
	Frequency     string        `yaml:"frequency" koanf:"frequency"`
	Warmup        bool          `yaml:"warmup" koanf:"warmup"`
	Verification  bool          `yaml:"verification" koanf:"verification"`
	Gmail         bool          `yaml:"gmail" koanf:"gmail"`
	SheetID       string        `yaml:"sheet_id" koanf:"sheet_id"`
	GeminiKey     string        `yaml:"gemini_key" koanf:"gemini_key"`
}

// AutoProvision reports whether the generated script must create its own
// spreadsheet on first run. It is the only place the storage mode is
// decided.
func (b Brand) AutoProvision() bool {
	return strings.TrimSpace(b.SheetID) == ""
}

// Cadence returns the trimmed frequency label, or DefaultFrequency when it
// is blank.
func (b Brand) Cadence() string {
	if f := strings.TrimSpace(b.Frequency); f != "" {
		return f
	}
	return DefaultFrequency
}

// HasAI reports whether the live AI-content block is generated.
func (b Brand) HasAI() bool {
	return strings.TrimSpace(b.GeminiKey) != ""
}

// Config is the top-level nlkit configuration, corresponding to .nlkit.yml.
type Config struct {
	Brand     Brand         `yaml:"brand" koanf:"brand"`
	Output    OutputConfig  `yaml:"output" koanf:"output"`
	Proxy     ProxyConfig   `yaml:"proxy" koanf:"proxy"`
	Preview   PreviewConfig `yaml:"preview" koanf:"preview"`
	HistoryDB string        `yaml:"history_db" koanf:"history_db"`
}

// OutputConfig controls how a generated bundle is written to disk.
type OutputConfig struct {
	Dir      string   `yaml:"dir" koanf:"dir"`
	Only     []string `yaml:"only" koanf:"only"`
	HTML     bool     `yaml:"html" koanf:"html"`
	Combined bool     `yaml:"combined" koanf:"combined"`
}

// ProxyConfig holds the Instagram code-exchange proxy settings.
type ProxyConfig struct {
	AppID       string `yaml:"app_id" koanf:"app_id"`
	AppSecret   string `yaml:"app_secret" koanf:"app_secret"`
	RedirectURI string `yaml:"redirect_uri" koanf:"redirect_uri"`
	Port        int    `yaml:"port" koanf:"port"`
	GraphURL    string `yaml:"graph_url" koanf:"graph_url"`
	AllowAll    bool   `yaml:"allow_all" koanf:"allow_all"`
}

// PreviewConfig selects the model used by nlkit preview.
type PreviewConfig struct {
	Provider LLMProvider `yaml:"provider" koanf:"provider"`
	Model    string      `yaml:"model" koanf:"model"`
}
