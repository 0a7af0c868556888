package config

// Defaults for optional settings. Required brand fields have none.
const (
	DefaultFrequency = "weekly"
	DefaultOutputDir = "dist"
	DefaultProxyPort = 4000
	DefaultGraphURL  = "https://graph.facebook.com/v21.0"
	DefaultHistoryDB = ".nlkit/history.db"
	DefaultGemini    = "gemini-2.5-flash"
)

// DefaultConfig returns a Config with sensible defaults. The brand name,
// sender address and email provider are left empty on purpose.
func DefaultConfig() *Config {
	return &Config{
		Brand: Brand{
			Template:     TemplateNewsletter,
			Frequency:    DefaultFrequency,
			Verification: true,
		},
		Output: OutputConfig{
			Dir: DefaultOutputDir,
		},
		Proxy: ProxyConfig{
			Port:     DefaultProxyPort,
			GraphURL: DefaultGraphURL,
			AllowAll: true,
		},
		Preview: PreviewConfig{
			Provider: LLMGoogle,
			Model:    DefaultGemini,
		},
		HistoryDB: DefaultHistoryDB,
	}
}
