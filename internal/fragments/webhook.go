package fragments

import "github.com/ziadkadry99/newsletter-kit/internal/config"

const webhookTemplate = `// ===== WEBHOOK HANDLER =====

function jsonResponse(body) {
  return ContentService.createTextOutput(JSON.stringify(body))
    .setMimeType(ContentService.MimeType.JSON);
}

/**
 * Serves the subscription form, or the thank-you page when called with
 * ?thankyou=true.
 */
function doGet(e) {
  const page = e && e.parameter && e.parameter.thankyou === 'true' ? 'thank-you' : 'index';
  return HtmlService.createHtmlOutputFromFile(page);
}

// parseSubmission reads URL parameters (ManyChat) or a JSON body (the form
// page). It returns { error } when the request cannot be read.
function parseSubmission(e) {
  if (e && e.parameter && e.parameter.email) {
    return {
      email: String(e.parameter.email),
      name: String(e.parameter.first_name || e.parameter.name || ''),
      source: e.parameter.source || 'manychat'
    };
  }
  if (e && e.postData && e.postData.contents) {
    let body;
    try {
      body = JSON.parse(e.postData.contents);
    } catch (parseError) {
      Logger.log('Error parsing JSON: ' + parseError);
      return { error: 'Invalid JSON data' };
    }
    return {
      email: String(body.email || ''),
      name: String(body.name || ''),
      source: body.source || 'direct'
    };
  }
  return { error: 'Invalid request format' };
}

/**
 * Webhook for ManyChat and the form page. Adds the subscriber and, when
 * verification is on, sends the warming email.
 */
function doPost(e) {
  try {
    const submission = parseSubmission(e);
    if (submission.error) {
      return jsonResponse({ success: false, error: submission.error });
    }

    const email = normalizeEmail(submission.email);
    const name = submission.name.trim();
    if (!isValidEmail(email)) {
      return jsonResponse({ success: false, error: 'Invalid email address' });
    }
    if (emailExists(email)) {
      return jsonResponse({ success: false, error: 'This email is already subscribed' });
    }

    const status = CONFIG.ENABLE_VERIFICATION ? 'pending' : 'active';
    const token = CONFIG.ENABLE_VERIFICATION ? generateToken(email) : '';
    addToSheet(email, name, token, submission.source, status);
    logEvent({ event: 'NEW_SUBSCRIBER', details: email + ' from ' + submission.source, status: 'SUCCESS' });

    if (CONFIG.ENABLE_VERIFICATION) {
      try {
        sendWarmingEmail(email, name);
        Logger.log('Warming email sent to: ' + email);
      } catch (emailError) {
        Logger.log('Error sending warming email: ' + emailError);
      }
    }

    return jsonResponse({
      success: true,
      message: 'Subscriber added',
      status: status,
      sheet_url: getSpreadsheetUrl()
    });
  } catch (error) {
    Logger.log('Error in doPost: ' + error);
    logEvent({ event: 'ERROR', details: String(error), status: 'ERROR' });
    return jsonResponse({ success: false, error: 'Internal server error: ' + error });
  }
}
`

// Webhook emits the Web App entry points.
func Webhook(b config.Brand) Fragment {
	return Fragment{
		Name:     "webhook",
		Live:     true,
		Text:     webhookTemplate,
		Provides: []string{"jsonResponse", "doGet", "doPost"},
		Requires: []string{
			"CONFIG",
			"normalizeEmail",
			"isValidEmail",
			"emailExists",
			"generateToken",
			"addToSheet",
			"logEvent",
			"sendWarmingEmail",
			"getSpreadsheetUrl",
		},
	}
}
