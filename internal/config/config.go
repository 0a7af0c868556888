package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of nlkit environment overrides.
const EnvPrefix = "NLKIT_"

// proxyEnv maps the proxy's conventional environment variables onto
// config keys.
var proxyEnv = map[string]string{
	"FACEBOOK_APP_ID":     "proxy.app_id",
	"FACEBOOK_APP_SECRET": "proxy.app_secret",
	"REDIRECT_URI":        "proxy.redirect_uri",
	"PORT":                "proxy.port",
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (NLKIT_*, with "__" separating nested
// keys) and the proxy's FACEBOOK_APP_ID, FACEBOOK_APP_SECRET, REDIRECT_URI
// and PORT variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// NLKIT_BRAND__SHEET_ID -> brand.sheet_id
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return proxyEnv[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("loading proxy env: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// ValidationError reports a missing or malformed configuration field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// emailPattern is the same shape check the generated script and form use.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// validTemplates is the set of recognized template values.
var validTemplates = map[Template]bool{
	TemplateNewsletter: true,
	TemplateStory:      true,
	TemplateMinimal:    true,
}

// validLLMProviders is the set of recognized preview providers.
var validLLMProviders = map[LLMProvider]bool{
	LLMGoogle: true,
	LLMOpenAI: true,
}

// Validate checks the brand fields the generator depends on. It returns
// the first problem found as a *ValidationError.
func (b Brand) Validate() error {
	if strings.TrimSpace(b.BrandName) == "" {
		return invalid("brand_name", "is required")
	}
	if b.EmailProvider == "" {
		return invalid("email_provider", "is required")
	}
	if !b.EmailProvider.Valid() {
		return invalid("email_provider", "%q must be one of sendpulse, brevo, resend, mailgun, mailersend, sendgrid, gmail", b.EmailProvider)
	}
	if b.SenderEmail == "" {
		return invalid("sender_email", "is required")
	}
	if !ValidEmail(b.SenderEmail) {
		return invalid("sender_email", "%q is not an email address", b.SenderEmail)
	}
	if b.Template == "" {
		return invalid("template", "is required")
	}
	if !validTemplates[b.Template] {
		return invalid("template", "%q must be one of newsletter, story, minimal", b.Template)
	}
	return nil
}

// Validate checks the brand and the tool settings.
func (c *Config) Validate() error {
	if err := c.Brand.Validate(); err != nil {
		return err
	}
	if c.Output.Dir == "" {
		return invalid("output.dir", "is required")
	}
	if c.Proxy.Port < 0 || c.Proxy.Port > 65535 {
		return invalid("proxy.port", "%d is out of range", c.Proxy.Port)
	}
	if c.Preview.Provider != "" && !validLLMProviders[c.Preview.Provider] {
		return invalid("preview.provider", "%q must be one of google, openai", c.Preview.Provider)
	}
	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given preview provider.
func APIKeyEnvVar(provider LLMProvider) string {
	switch provider {
	case LLMGoogle:
		return KeyGeminiAPIKey
	case LLMOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}
