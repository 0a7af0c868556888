package script

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/newsletter-kit/internal/config"
	"github.com/ziadkadry99/newsletter-kit/internal/fragments"
)

// jsRuntime runs a generated Code.gs against testdata/appsscript_mock.js.
type jsRuntime struct {
	t  *testing.T
	vm *goja.Runtime
}

func load(t *testing.T, b config.Brand) *jsRuntime {
	t.Helper()
	s, err := Assemble(b)
	require.NoError(t, err)

	mock, err := os.ReadFile("testdata/appsscript_mock.js")
	require.NoError(t, err)

	vm := goja.New()
	_, err = vm.RunScript("appsscript_mock.js", string(mock))
	require.NoError(t, err)
	_, err = vm.RunScript("Code.gs", s.Text)
	require.NoError(t, err)
	return &jsRuntime{t: t, vm: vm}
}

func (r *jsRuntime) eval(src string) goja.Value {
	r.t.Helper()
	v, err := r.vm.RunString(src)
	require.NoError(r.t, err, src)
	return v
}

func (r *jsRuntime) evalErr(src string) error {
	_, err := r.vm.RunString(src)
	return err
}

func (r *jsRuntime) str(src string) string {
	r.t.Helper()
	return r.eval(src).String()
}

// response decodes the JSON body of a ContentService output.
func (r *jsRuntime) response(call string) map[string]any {
	r.t.Helper()
	var out map[string]any
	require.NoError(r.t, json.Unmarshal([]byte(r.str(call+".getContent()")), &out))
	return out
}

func (r *jsRuntime) logs() []string {
	r.t.Helper()
	var logs []string
	require.NoError(r.t, r.vm.ExportTo(r.eval("__logs"), &logs))
	return logs
}

func (r *jsRuntime) attempts() []string {
	const prefix = "Attempting to send email via "
	var providers []string
	for _, line := range r.logs() {
		if rest, ok := strings.CutPrefix(line, prefix); ok {
			providers = append(providers, strings.Fields(rest)[0])
		}
	}
	return providers
}

func (r *jsRuntime) setProps(props map[string]string) {
	r.t.Helper()
	data, err := json.Marshal(props)
	require.NoError(r.t, err)
	r.eval("__props = " + string(data) + ";")
}

func allCredentials() map[string]string {
	return map[string]string{
		"FROM_EMAIL":           "news@acme.test",
		"SENDPULSE_API_ID":     "id",
		"SENDPULSE_API_SECRET": "secret",
		"BREVO_API_KEY":        "brevo",
		"RESEND_API_KEY":       "resend",
		"MAILGUN_API_KEY":      "mailgun",
		"MAILGUN_DOMAIN":       "mg.acme.test",
		"MAILERSEND_API_KEY":   "mailersend",
		"SENDGRID_API_KEY":     "sendgrid",
	}
}

func TestRuntimeLiteralsRoundTrip(t *testing.T) {
	b := acme()
	b.BrandName = "Ac`me ${brand} \\o/ \"quoted\" 'single' </script>"
	b.BrandBio = "Line one\nLine two with `ticks` and ${not_interpolated}"
	b.BrandVoice = `C:\path\to\${x}`
	b.SampleContent = "trailing backslash \\"
	b.SheetID = "  sheet-123  "

	r := load(t, b)
	assert.Equal(t, b.BrandName, r.str("CONFIG.BRAND_NAME"))
	assert.Equal(t, b.BrandBio, r.str("CONFIG.BRAND_BIO"))
	assert.Equal(t, b.BrandVoice, r.str("CONFIG.BRAND_VOICE"))
	assert.Equal(t, b.SampleContent, r.str("CONFIG.SAMPLE_CONTENT"))
	assert.Equal(t, "sheet-123", r.str("CONFIG.SHEET_ID"))
	assert.Equal(t, "resend", r.str("CONFIG.PRIMARY_PROVIDER"))
	assert.Equal(t, "sendpulse,brevo,resend,mailgun,mailersend,sendgrid,gmail", r.str("CONFIG.PROVIDER_PRIORITY.join(',')"))
	assert.True(t, r.eval("CONFIG.ENABLE_VERIFICATION").ToBoolean())
	assert.False(t, r.eval("CONFIG.ENABLE_AI").ToBoolean())
}

func TestRuntimeDefinesEveryProvidedSymbol(t *testing.T) {
	b := acme()
	b.Gmail = true
	b.GeminiKey = "key"
	s, err := Assemble(b)
	require.NoError(t, err)

	r := load(t, b)
	for _, f := range s.Fragments {
		for _, symbol := range f.Provides {
			assert.NotEqual(t, "undefined", r.str("typeof "+symbol), "%s from %s", symbol, f.Name)
		}
	}
}

func TestRuntimeFailoverOrder(t *testing.T) {
	b := acme()
	b.Verification = false
	r := load(t, b)
	r.setProps(allCredentials())
	r.eval(`__fetchStatus = { 'api.resend.com': 500, 'api.sendpulse.com': 500, 'api.brevo.com': 400 };`)

	assert.True(t, r.eval(`sendEmail('fan@example.com', 'Hi', '<p>Hello</p>')`).ToBoolean())
	assert.Equal(t, []string{"resend", "sendpulse", "brevo", "mailgun"}, r.attempts())
	assert.Contains(t, r.str("__fetches[__fetches.length - 1].url"), "https://api.mailgun.net/v3/mg.acme.test/messages")
}

func TestRuntimeFailoverSkipsUnconfiguredProviders(t *testing.T) {
	b := acme()
	b.Verification = false
	r := load(t, b)
	r.setProps(map[string]string{
		"FROM_EMAIL":       "news@acme.test",
		"RESEND_API_KEY":   "resend",
		"SENDGRID_API_KEY": "sendgrid",
	})
	r.eval(`__fetchStatus = { 'api.resend.com': 500, 'api.sendgrid.com': 202 };`)

	r.eval(`sendEmail('fan@example.com', 'Hi', '<p>Hello</p>')`)
	assert.Equal(t, []string{"resend", "sendgrid"}, r.attempts())
}

func TestRuntimeFailoverDisabled(t *testing.T) {
	b := acme()
	b.Verification = false
	r := load(t, b)
	props := allCredentials()
	props["ENABLE_FAILOVER"] = "false"
	r.setProps(props)
	r.eval(`__fetchStatus = { 'api.resend.com': 500 };`)

	err := r.evalErr(`sendEmail('fan@example.com', 'Hi', '<p>Hello</p>')`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Resend error (500)")
	assert.Equal(t, []string{"resend"}, r.attempts())
}

func TestRuntimeAllProvidersFail(t *testing.T) {
	b := acme()
	b.Verification = false
	r := load(t, b)
	r.setProps(allCredentials())
	r.eval(`__fetchStatus = {
	  'api.resend.com': 500, 'api.sendpulse.com': 500, 'api.brevo.com': 500,
	  'api.mailgun.net': 500, 'api.mailersend.com': 500, 'api.sendgrid.com': 500
	};
	GmailApp.sendEmail = function() { throw new Error('quota exceeded'); };`)

	err := r.evalErr(`sendEmail('fan@example.com', 'Hi', '<p>Hello</p>')`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "All email providers failed (resend, sendpulse, brevo, mailgun, mailersend, sendgrid, gmail)")
	assert.Contains(t, err.Error(), "Gmail error: quota exceeded")
}

func TestRuntimeEmailProviderOverride(t *testing.T) {
	b := acme()
	b.Verification = false
	r := load(t, b)
	props := allCredentials()
	props["EMAIL_PROVIDER"] = " Gmail "
	r.setProps(props)

	r.eval(`sendEmail('fan@example.com', 'Hi', '<p>Hello</p>')`)
	assert.Equal(t, []string{"gmail"}, r.attempts())
	assert.Equal(t, "Hello", r.str("__gmailSent[0].body"))
}

func TestRuntimeWebhookDuplicate(t *testing.T) {
	b := acme()
	b.Verification = false
	r := load(t, b)
	r.setProps(allCredentials())

	first := r.response(`doPost({ parameter: { email: ' Jane@Example.com ', first_name: 'Jane' } })`)
	assert.Equal(t, true, first["success"])
	assert.Equal(t, "Subscriber added", first["message"])
	assert.Equal(t, "active", first["status"])
	assert.Contains(t, first["sheet_url"], "https://docs.google.com/spreadsheets/d/")

	second := r.response(`doPost({ parameter: { email: 'jane@example.com' } })`)
	assert.Equal(t, false, second["success"])
	assert.Equal(t, "This email is already subscribed", second["error"])

	rows := r.eval(`__sheetRows(__props.NEWSLETTER_SHEET_ID, 'Subscribers')`).Export().([]any)
	require.Len(t, rows, 2)
	row := rows[1].([]any)
	assert.Equal(t, "jane@example.com", row[1])
	assert.Equal(t, "Jane", row[2])
	assert.Equal(t, "manychat", row[4])
	assert.Equal(t, "active", row[5])
}

func TestRuntimeWebhookRejectsBadInput(t *testing.T) {
	r := load(t, acme())
	r.setProps(allCredentials())

	tests := []struct {
		call string
		want string
	}{
		{`doPost({ parameter: { email: 'not-an-email' } })`, "Invalid email address"},
		{`doPost({ postData: { contents: '{not json' } })`, "Invalid JSON data"},
		{`doPost({ postData: { contents: '{"email":"x@"}' } })`, "Invalid email address"},
		{`doPost({})`, "Invalid request format"},
	}
	for _, tt := range tests {
		got := r.response(tt.call)
		assert.Equal(t, false, got["success"], tt.call)
		assert.Equal(t, tt.want, got["error"], tt.call)
	}
}

func TestRuntimeWebhookSurvivesWarmingFailure(t *testing.T) {
	b := acme()
	b.EmailProvider = config.ProviderGmail
	r := load(t, b)
	r.setProps(map[string]string{"FROM_EMAIL": "news@acme.test"})
	r.eval(`GmailApp.sendEmail = function() { throw new Error('quota exceeded'); };`)

	got := r.response(`doPost({ parameter: { email: 'fan@example.com' } })`)
	assert.Equal(t, true, got["success"])
	assert.Equal(t, "pending", got["status"])
	assert.Equal(t, "pending", r.str(`__sheetRows(__props.NEWSLETTER_SHEET_ID, 'Subscribers')[1][5]`))

	var logged bool
	for _, line := range r.logs() {
		if strings.HasPrefix(line, "Error sending warming email: ") {
			logged = true
			assert.Contains(t, line, "Gmail error: quota exceeded")
		}
	}
	assert.True(t, logged, "warming failure not logged")
}

func TestRuntimeWebhookStorageFailure(t *testing.T) {
	t.Run("subscriber sheet", func(t *testing.T) {
		r := load(t, acme())
		r.setProps(allCredentials())
		r.eval(`var __appendRow = MockSheet.prototype.appendRow;
		MockSheet.prototype.appendRow = function(row) {
		  if (this.name === 'Subscribers') {
		    throw new Error('storage down');
		  }
		  return __appendRow.call(this, row);
		};`)

		got := r.response(`doPost({ parameter: { email: 'fan@example.com' } })`)
		assert.Equal(t, false, got["success"])
		assert.Equal(t, "Internal server error: Error: storage down", got["error"])

		const lastEvent = `__sheetRows(__props.NEWSLETTER_SHEET_ID, 'EventLog')[__sheetRows(__props.NEWSLETTER_SHEET_ID, 'EventLog').length - 1]`
		assert.Equal(t, "ERROR", r.str(lastEvent+`[1]`))
		assert.Equal(t, "Error: storage down", r.str(lastEvent+`[2]`))
		assert.Equal(t, "ERROR", r.str(lastEvent+`[3]`))
	})

	t.Run("spreadsheet unavailable", func(t *testing.T) {
		r := load(t, acme())
		r.setProps(allCredentials())
		r.eval(`SpreadsheetApp.create = function() { throw new Error('storage down'); };`)

		got := r.response(`doPost({ parameter: { email: 'fan@example.com' } })`)
		assert.Equal(t, false, got["success"])
		assert.Equal(t, "Internal server error: Error: storage down", got["error"])
		assert.Contains(t, r.logs(), "Error in doPost: Error: storage down")
		assert.Contains(t, r.logs(), "Could not log event: Error: storage down")
	})
}

func TestRuntimeWebhookVerificationFlow(t *testing.T) {
	b := acme()
	b.EmailProvider = config.ProviderGmail
	r := load(t, b)
	r.setProps(map[string]string{"FROM_EMAIL": "news@acme.test"})

	got := r.response(`doPost({ postData: { contents: JSON.stringify({ email: 'Fan@Example.com', name: ' Fan ', source: 'web_form' }) } })`)
	assert.Equal(t, true, got["success"])
	assert.Equal(t, "pending", got["status"])

	assert.Equal(t, "Quick question from Acme? 👋", r.str("__gmailSent[0].subject"))
	assert.Equal(t, "fan@example.com", r.str("__gmailSent[0].to"))

	token := r.str(`__sheetRows(__props.NEWSLETTER_SHEET_ID, 'Subscribers')[1][3]`)
	assert.Len(t, token, 32)
	assert.Equal(t, "fan@example.com", r.str(`validateToken('`+token+`')`))

	assert.Equal(t, "✓ Verified and sent welcome email to fan@example.com", r.str(`manualVerify('FAN@example.com')`))
	assert.Equal(t, "Welcome to Acme! 🎉", r.str("__gmailSent[1].subject"))
	assert.Equal(t, "Email already verified: fan@example.com", r.str(`manualVerify('fan@example.com')`))
	assert.Equal(t, "Email not found in sheet: nobody@example.com", r.str(`manualVerify('nobody@example.com')`))
	assert.Equal(t, "Invalid email address", r.str(`manualVerify('nope')`))
}

func TestRuntimeTokenLifecycle(t *testing.T) {
	r := load(t, acme())

	token := r.str(`generateToken('a@b.co')`)
	assert.Regexp(t, `^[0-9a-f]{32}$`, token)
	assert.Equal(t, "a@b.co", r.str(`validateToken('`+token+`')`))
	assert.True(t, r.eval(`deleteToken('`+token+`')`).ToBoolean())
	assert.True(t, goja.IsNull(r.eval(`validateToken('`+token+`')`)))

	r.eval(`getTokensSheet().appendRow(['stale', 'old@b.co', new Date(0), new Date(1000)]);`)
	assert.True(t, goja.IsNull(r.eval(`validateToken('stale')`)))
	assert.Equal(t, int64(1), r.eval(`getTokensSheet().getLastRow()`).ToInteger())
}

func TestRuntimeReplyDetection(t *testing.T) {
	b := acme()
	b.Gmail = true
	b.EmailProvider = config.ProviderGmail
	r := load(t, b)
	r.setProps(map[string]string{"FROM_EMAIL": "news@acme.test"})

	r.response(`doPost({ parameter: { email: 'fan@googlemail.com', first_name: 'Fan' } })`)
	r.response(`doPost({ parameter: { email: 'quiet@example.com' } })`)
	r.eval(`__addReply('fan@gmail.com');`)

	assert.Equal(t, int64(1), r.eval(`processGmailReplies()`).ToInteger())

	rows := r.eval(`__sheetRows(__props.NEWSLETTER_SHEET_ID, 'Subscribers')`).Export().([]any)
	assert.Equal(t, "verified", rows[1].([]any)[5])
	assert.Equal(t, "pending", rows[2].([]any)[5])
	assert.Equal(t, "processed-reply", r.str(`__gmailThreads['fan@gmail.com'][0].labels[0]`))
	assert.Equal(t, "Welcome to Acme! 🎉", r.str(`__gmailSent[__gmailSent.length - 1].subject`))

	r.eval(`setupAllTriggers(); setupAllTriggers();`)
	assert.Equal(t, int64(2), r.eval(`__triggers.length`).ToInteger())
	assert.Equal(t, "processGmailReplies,onSheetEdit", r.str(`__triggers.map(function(t) { return t.handler; }).join(',')`))
}

func TestRuntimeReplyDetectionDisabled(t *testing.T) {
	r := load(t, acme())
	r.eval(`setupAllTriggers();`)
	assert.Equal(t, int64(0), r.eval(`__triggers.length`).ToInteger())
	assert.Contains(t, r.logs(), "Gmail reply detection is disabled; no triggers to set up")
}

func TestRuntimeSendNewsletter(t *testing.T) {
	b := acme()
	b.Verification = false
	b.Warmup = true
	b.EmailProvider = config.ProviderGmail
	r := load(t, b)
	r.setProps(map[string]string{"FROM_EMAIL": "news@acme.test"})

	r.response(`doPost({ parameter: { email: 'one@example.com' } })`)
	r.response(`doPost({ parameter: { email: 'two@example.com' } })`)
	r.eval(`updateSubscriberStatus('two@example.com', 'unsubscribed');`)
	r.response(`doPost({ parameter: { email: 'three@example.com' } })`)

	got := r.eval(`sendNewsletter('Issue 1', '<p>News</p>')`).Export().(map[string]any)
	assert.EqualValues(t, 2, got["sent"])
	assert.EqualValues(t, 0, got["failed"])

	var sleeps int
	for _, line := range r.logs() {
		if line == "sleep 2000" {
			sleeps++
		}
	}
	assert.Equal(t, 2, sleeps)
	assert.Contains(t, r.str(`__gmailSent[0].options.htmlBody`), "<p>News</p>")
}

func TestRuntimeSchedule(t *testing.T) {
	for freq, want := range map[string]string{
		"daily":    "everyDays(1)",
		"weekly":   "onWeekDay(MONDAY)",
		"biweekly": "everyWeeks(2)",
		"monthly":  "onMonthDay(1)",
		"whenever": "everyWeeks(1)",
	} {
		b := acme()
		b.Frequency = freq
		r := load(t, b)
		r.eval(`setupNewsletterSchedule(); setupNewsletterSchedule();`)
		assert.Equal(t, int64(1), r.eval(`__triggers.length`).ToInteger(), freq)
		assert.Contains(t, r.str(`__triggers[0].calls.join(' ')`), want, freq)
	}
}

func TestRuntimePromptMatchesGo(t *testing.T) {
	b := acme()
	b.GeminiKey = "key"
	b.BrandBio = "Anvils & `rockets`"
	b.BrandVoice = "Dry"
	r := load(t, b)
	assert.Equal(t, fragments.Prompt(b), r.str(`buildNewsletterPrompt()`))
}

func TestRuntimeGenerateAIContent(t *testing.T) {
	b := acme()
	b.GeminiKey = "key"
	r := load(t, b)

	assert.True(t, goja.IsNull(r.eval(`generateAIContent()`)), "no key in Script Properties")

	r.setProps(map[string]string{"GEMINI_API_KEY": "secret"})
	r.eval(`UrlFetchApp.fetch = function(url, options) {
	  __fetches.push({ url: url, options: options });
	  return new MockResponse(200, JSON.stringify({ candidates: [{ content: { parts: [{ text: '<p>AI</p>' }] } }] }));
	};`)
	assert.Equal(t, "<p>AI</p>", r.str(`generateAIContent()`))
	assert.Equal(t, fragments.GeminiEndpoint, r.str(`__fetches[0].url`))
	assert.Equal(t, "secret", r.str(`__fetches[0].options.headers['x-goog-api-key']`))
}

func TestRuntimeDoGet(t *testing.T) {
	r := load(t, acme())
	assert.Equal(t, "index", r.str(`doGet({ parameter: {} }).file`))
	assert.Equal(t, "thank-you", r.str(`doGet({ parameter: { thankyou: 'true' } }).file`))
}

func TestRuntimeSuppliedSpreadsheet(t *testing.T) {
	b := acme()
	b.Verification = false
	b.SheetID = "sheet-123"
	r := load(t, b)
	r.setProps(allCredentials())
	r.eval(`__addSpreadsheet('sheet-123', 'Existing');`)

	assert.Equal(t, "undefined", r.str(`typeof getOrCreateSpreadsheet`))
	got := r.response(`doPost({ parameter: { email: 'fan@example.com' } })`)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/sheet-123", got["sheet_url"])
	assert.EqualValues(t, 2, r.eval(`__sheetRows('sheet-123', 'Subscribers').length`).ToInteger())
}

func TestRuntimeDiagnostics(t *testing.T) {
	b := acme()
	b.Verification = false
	r := load(t, b)
	r.setProps(map[string]string{"FROM_EMAIL": "news@acme.test", "RESEND_API_KEY": "k"})

	assert.Contains(t, r.str(`testWebhook()`), `"success":true`)
	results := r.eval(`testAllProviders()`).Export().(map[string]any)
	assert.Equal(t, "✓ Success", results["resend"])
	assert.Equal(t, "✓ Success", results["gmail"])
	assert.Equal(t, "skipped", results["brevo"])
	assert.Equal(t, "Test newsletter sent successfully to news@acme.test", r.str(`sendTestNewsletter()`))
}
