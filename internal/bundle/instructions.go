package bundle

import (
	"strings"
	"text/template"

	"github.com/ziadkadry99/newsletter-kit/internal/config"
)

// property is one Script Property row of the setup guide.
type property struct {
	Key   string
	Value string
	Note  string
}

type instructionsData struct {
	Brand        config.Brand
	Features     []string
	Provider     config.ProviderInfo
	Required     []property
	Optional     []property
	Failover     []config.ProviderInfo
	SheetURL     string
	Frequency    string
	Verification bool
	Gmail        bool
}

// properties returns the Script Properties the operator must set for b,
// followed by the optional ones. Keys come from the same table the
// credential block reads.
func properties(b config.Brand) (required, optional []property) {
	required = append(required, property{
		Key:   config.KeyFromEmail,
		Value: b.SenderEmail,
		Note:  "sender address, verified with your provider",
	})
	for _, s := range b.EmailProvider.Info().Secrets {
		required = append(required, property{Key: s.Key, Value: "your " + s.Description, Note: "primary provider"})
	}
	if key := strings.TrimSpace(b.GeminiKey); key != "" {
		required = append(required, property{Key: config.KeyGeminiAPIKey, Value: key, Note: "AI content generation"})
	}

	optional = append(optional,
		property{Key: config.KeyEmailProvider, Value: string(b.EmailProvider), Note: "overrides the primary provider without regenerating"},
		property{Key: config.KeyEnableFailover, Value: "true", Note: "set to false to use the primary provider only"},
	)
	if !b.AutoProvision() {
		optional = append(optional, property{Key: config.KeySpreadsheetID, Value: strings.TrimSpace(b.SheetID), Note: "only needed if the script is moved to another project"})
	}
	return required, optional
}

func featureList(b config.Brand) []string {
	features := []string{"Multi-provider email with failover (primary: " + b.EmailProvider.Info().DisplayName + ")"}
	if b.Verification {
		features = append(features, "Email verification workflow")
	} else {
		features = append(features, "Direct subscription (no verification)")
	}
	if b.Gmail {
		features = append(features, "Gmail reply detection")
	}
	if b.HasAI() {
		features = append(features, "AI content generation")
	} else {
		features = append(features, "Manual content creation")
	}
	if b.Warmup {
		features = append(features, "Warm-up sending (2 seconds between emails)")
	}
	features = append(features, titleCase(string(b.Template))+" email template")
	if b.AutoProvision() {
		features = append(features, "Spreadsheet created automatically on first run")
	} else {
		features = append(features, "Existing spreadsheet storage")
	}
	features = append(features, "ManyChat webhook support")
	return features
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func renderInstructions(b config.Brand) (string, error) {
	tmpl, err := template.New("instructions").Funcs(templateFuncs).Parse(instructionsTemplate)
	if err != nil {
		return "", err
	}

	required, optional := properties(b)
	data := instructionsData{
		Brand:        b,
		Features:     featureList(b),
		Provider:     b.EmailProvider.Info(),
		Required:     required,
		Optional:     optional,
		Failover:     failoverProviders(b.EmailProvider),
		Frequency:    b.Cadence(),
		Verification: b.Verification,
		Gmail:        b.Gmail,
	}
	if !b.AutoProvision() {
		data.SheetURL = "https://docs.google.com/spreadsheets/d/" + strings.TrimSpace(b.SheetID)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// failoverProviders lists the providers that need secrets, minus primary.
func failoverProviders(primary config.EmailProvider) []config.ProviderInfo {
	var out []config.ProviderInfo
	for _, p := range config.FailoverOrder(primary) {
		if info := p.Info(); len(info.Secrets) > 0 {
			out = append(out, info)
		}
	}
	return out
}

var templateFuncs = template.FuncMap{
	"code": func(s string) string {
		return "`" + s + "`"
	},
	// placeholder renders a ManyChat merge field.
	"placeholder": func(name string) string {
		return "{{" + name + "}}"
	},
}

const instructionsTemplate = `# {{ .Brand.BrandName }} Newsletter Automation - Setup Instructions

## What You Generated

{{ range .Features }}- {{ . }}
{{ end }}
Files: {{ code "Code.gs" }}, {{ code "index.html" }}, {{ code "thank-you.html" }} and this guide.

## Setup Steps

### 1. Create the Apps Script Project

1. Go to [script.google.com](https://script.google.com) and click **New project**.
2. Name it "{{ .Brand.BrandName }} Newsletter".

### 2. Add the Files

1. Replace the contents of {{ code "Code.gs" }} with the generated **Code.gs**.
2. Click **+** next to Files, choose **HTML**, name it {{ code "index" }} and paste **index.html**.
3. Add another HTML file named {{ code "thank-you" }} and paste **thank-you.html**.

### 3. Set Script Properties

Open **Project Settings** (gear icon), scroll to **Script Properties** and add:

| Property | Value | Notes |
|----------|-------|-------|
{{ range .Required }}| {{ code .Key }} | {{ .Value }} | {{ .Note }} |
{{ end }}
Optional:

| Property | Value | Notes |
|----------|-------|-------|
{{ range .Optional }}| {{ code .Key }} | {{ .Value }} | {{ .Note }} |
{{ end }}
{{- if .Failover }}
Failover tries the other providers in priority order, skipping any without credentials. To enable one, add its properties:

{{ range .Failover }}- {{ .DisplayName }}:{{ range .Secrets }} {{ code .Key }}{{ end }}
{{ end }}- Gmail: no properties, sends as the script owner
{{ end }}
### 4. Deploy as a Web App

1. Click **Deploy** > **New deployment**, select type **Web app**.
2. Execute as: **Me**. Who has access: **Anyone**.
3. Click **Deploy**, authorize, and copy the Web App URL.
4. Open the URL to see the subscription form.
{{ if .Gmail }}
### 5. Enable Gmail Triggers

1. Select {{ code "setupAllTriggers" }} in the function list and click **Run** once.
2. Replies from pending subscribers are now checked every 5 minutes.
3. Run {{ code "testGmailAccess" }} if Gmail permissions need to be granted again.
{{ end }}
### {{ if .Gmail }}6{{ else }}5{{ end }}. Schedule Newsletters

Run {{ code "setupNewsletterSchedule" }} once to send a newsletter {{ .Frequency }}.
{{- if .Brand.HasAI }} Each issue is written by Gemini from your brand profile.{{ else }} Edit the placeholder content in {{ code "scheduledNewsletterSend" }} or call {{ code "sendNewsletter(subject, html)" }} yourself.{{ end }}

### {{ if .Gmail }}7{{ else }}6{{ end }}. Connect ManyChat (Optional)

1. In ManyChat, add an **External Request** action to your flow.
2. Method **POST**, URL: your Web App URL.
3. Send these parameters:
   - email={{ placeholder "user_email" }}
   - first_name={{ placeholder "first_name" }}
   - source=manychat

### {{ if .Gmail }}8{{ else }}7{{ end }}. Test

1. Run {{ code "testWebhook" }}, then {{ code "showMySpreadsheet" }} to find the subscriber row.
2. Run {{ code "sendTestNewsletter" }} to send a test issue to {{ .Brand.SenderEmail }}.
3. Run {{ code "testAllProviders" }} to check every configured provider.
{{- if .Verification }}
4. Run {{ code "manualVerify('someone@example.com')" }} to verify a subscriber by hand.
{{- end }}

## Your Google Sheet
{{ if .SheetURL }}
Subscribers are stored in {{ .SheetURL }}. The script adds the {{ code "Subscribers" }}, {{ code "EventLog" }}{{ if .Verification }} and {{ code "Tokens" }}{{ end }} sheets if they are missing.
{{ else }}
A new spreadsheet named "{{ .Brand.BrandName }} - Newsletter Subscribers" is created on the first request. Its id is saved as {{ code "NEWSLETTER_SHEET_ID" }}; run {{ code "showMySpreadsheet" }} to get the link.
{{ end }}
## Notes

- API keys live in Script Properties, never in the code.
- {{ if .Verification }}New subscribers stay {{ code "pending" }} until they reply to the first email.{{ else }}New subscribers are {{ code "active" }} immediately.{{ end }}
- The webhook rejects invalid and duplicate email addresses.

## Troubleshooting

- **Emails are not sent:** check {{ code "FROM_EMAIL" }} and the {{ .Provider.DisplayName }} properties, then run {{ code "testAllProviders" }}.
- **The form does not submit:** redeploy with access set to **Anyone** and use the latest deployment URL.
{{- if .Gmail }}
- **Replies are not detected:** run {{ code "setupAllTriggers" }} again and check **Triggers** in the sidebar.
{{- end }}
- **Errors:** see the {{ code "EventLog" }} sheet and **Executions** in the Apps Script sidebar.
`
