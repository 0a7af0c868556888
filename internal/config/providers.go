package config

// Script Property keys read by the generated script.
const (
	KeyFromEmail       = "FROM_EMAIL"
	KeyEmailProvider   = "EMAIL_PROVIDER"
	KeyEnableFailover  = "ENABLE_FAILOVER"
	KeyGeminiAPIKey    = "GEMINI_API_KEY"
	KeyNewsletterSheet = "NEWSLETTER_SHEET_ID"
	KeySpreadsheetID   = "SPREADSHEET_ID"
)

// ProviderPriority is the fixed failover order. Failover walks it with the
// primary provider removed.
var ProviderPriority = []EmailProvider{
	ProviderSendPulse,
	ProviderBrevo,
	ProviderResend,
	ProviderMailgun,
	ProviderMailerSend,
	ProviderSendGrid,
	ProviderGmail,
}

// ProviderInfo describes one email provider and the secrets it needs.
type ProviderInfo struct {
	Name        EmailProvider
	DisplayName string
	// APIKey is the Script Property holding the provider's API key, empty
	// when the provider authenticates differently.
	APIKey string
	// Secrets lists every Script Property the provider needs, in the order
	// the setup guide presents them.
	Secrets []Secret
}

// Secret is one Script Property the operator must set.
type Secret struct {
	Key         string
	Description string
}

var providerInfo = map[EmailProvider]ProviderInfo{
	ProviderSendPulse: {
		Name:        ProviderSendPulse,
		DisplayName: "SendPulse",
		Secrets: []Secret{
			{Key: "SENDPULSE_API_ID", Description: "SendPulse REST API ID"},
			{Key: "SENDPULSE_API_SECRET", Description: "SendPulse REST API secret"},
		},
	},
	ProviderBrevo: {
		Name:        ProviderBrevo,
		DisplayName: "Brevo",
		APIKey:      "BREVO_API_KEY",
		Secrets:     []Secret{{Key: "BREVO_API_KEY", Description: "Brevo API key"}},
	},
	ProviderResend: {
		Name:        ProviderResend,
		DisplayName: "Resend",
		APIKey:      "RESEND_API_KEY",
		Secrets:     []Secret{{Key: "RESEND_API_KEY", Description: "Resend API key"}},
	},
	ProviderMailgun: {
		Name:        ProviderMailgun,
		DisplayName: "Mailgun",
		APIKey:      "MAILGUN_API_KEY",
		Secrets: []Secret{
			{Key: "MAILGUN_API_KEY", Description: "Mailgun private API key"},
			{Key: "MAILGUN_DOMAIN", Description: "Mailgun sending domain"},
		},
	},
	ProviderMailerSend: {
		Name:        ProviderMailerSend,
		DisplayName: "MailerSend",
		APIKey:      "MAILERSEND_API_KEY",
		Secrets:     []Secret{{Key: "MAILERSEND_API_KEY", Description: "MailerSend API token"}},
	},
	ProviderSendGrid: {
		Name:        ProviderSendGrid,
		DisplayName: "SendGrid",
		APIKey:      "SENDGRID_API_KEY",
		Secrets:     []Secret{{Key: "SENDGRID_API_KEY", Description: "SendGrid API key"}},
	},
	ProviderGmail: {
		Name:        ProviderGmail,
		DisplayName: "Gmail",
	},
}

// Info returns the provider description. The zero value is returned for
// unknown providers.
func (p EmailProvider) Info() ProviderInfo {
	return providerInfo[p]
}

// Valid reports whether p is a supported provider.
func (p EmailProvider) Valid() bool {
	_, ok := providerInfo[p]
	return ok
}

// ProviderAPIKeys maps each key-authenticated provider to its API key
// property, in priority order.
func ProviderAPIKeys() []ProviderInfo {
	var out []ProviderInfo
	for _, p := range ProviderPriority {
		if info := p.Info(); info.APIKey != "" {
			out = append(out, info)
		}
	}
	return out
}

// FailoverOrder returns the providers tried after primary fails.
func FailoverOrder(primary EmailProvider) []EmailProvider {
	out := make([]EmailProvider, 0, len(ProviderPriority))
	for _, p := range ProviderPriority {
		if p != primary {
			out = append(out, p)
		}
	}
	return out
}
