package fragments

import "github.com/ziadkadry99/newsletter-kit/internal/config"

const diagnosticsTemplate = `// ===== DIAGNOSTICS =====

// Run from the editor to find the subscriber spreadsheet.
function showMySpreadsheet() {
  const ss = {{ .Storage }}();
  Logger.log('📊 Your Newsletter Spreadsheet: ' + ss.getUrl());
  Logger.log('Sheet ID: ' + ss.getId());
  return { url: ss.getUrl(), sheetId: ss.getId() };
}

// Simulates a ManyChat submission for test@example.com.
function testWebhook() {
  const result = doPost({
    parameter: {
      source: 'test',
      first_name: 'Test',
      email: 'test@example.com'
    }
  });
  Logger.log('Test webhook result: ' + result.getContent());
  return result.getContent();
}

function sendTestNewsletter() {
  const to = getFromEmail();
  const content = "<h2>Test Newsletter</h2><p>This is a test newsletter. If you're seeing this, everything is working correctly!</p>";
  try {
    sendEmail(to, 'Test Newsletter from ' + CONFIG.BRAND_NAME, getEmailTemplate(content), plainText(content));
    Logger.log('✓ Test newsletter sent to: ' + to);
    return 'Test newsletter sent successfully to ' + to;
  } catch (error) {
    Logger.log('Error sending test newsletter: ' + error);
    return 'Error: ' + error;
  }
}

/**
 * Sends a test email through every configured provider, bypassing
 * failover. Providers without credentials are reported as skipped.
 */
function testAllProviders() {
  const to = getFromEmail();
  const content = '<p>This is a provider test email.</p>';
  const htmlContent = getEmailTemplate(content);
  const results = {};

  CONFIG.PROVIDER_PRIORITY.forEach(function(provider) {
    if (!hasProviderCredentials(provider)) {
      results[provider] = 'skipped';
      return;
    }
    try {
      sendEmailWithProvider(to, 'Provider Test from ' + CONFIG.BRAND_NAME, htmlContent, plainText(content), provider);
      results[provider] = '✓ Success';
    } catch (error) {
      results[provider] = '✗ Failed: ' + error;
    }
    Logger.log(provider + ': ' + results[provider]);
  });
  return results;
}
`

var diagnosticsTmpl = parse("diagnostics", diagnosticsTemplate)

// Diagnostics emits helpers an operator runs from the Apps Script editor.
func Diagnostics(b config.Brand) Fragment {
	return Fragment{
		Name: "diagnostics",
		Live: true,
		Text: render(diagnosticsTmpl, b),
		Provides: []string{
			"showMySpreadsheet",
			"testWebhook",
			"sendTestNewsletter",
			"testAllProviders",
		},
		Requires: []string{
			StorageAccessor(b),
			"CONFIG",
			"doPost",
			"getFromEmail",
			"sendEmail",
			"sendEmailWithProvider",
			"hasProviderCredentials",
			"getEmailTemplate",
			"plainText",
		},
	}
}
