package fragments

import "github.com/ziadkadry99/newsletter-kit/internal/config"

const verificationTemplate = `// ===== EMAIL VERIFICATION WORKFLOW =====
// New subscribers get a warming email asking for a reply. Once a reply is
// seen (or manualVerify is run) they are marked verified and welcomed.

function sendWarmingEmail(email, name) {
  const greeting = name || 'there';
  const brand = escapeHtml(CONFIG.BRAND_NAME);
  const htmlContent = [
    '<!DOCTYPE html>',
    '<html>',
    '<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">',
    '  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">',
    '    <h2 style="color: #667eea;">Hey ' + escapeHtml(greeting) + '! 👋</h2>',
    '    <p>Thanks for subscribing to ' + brand + '!</p>',
    '    <p>Quick question: are you actively interested in receiving our updates and content?</p>',
    "    <p>Just reply \"yes\" or say hi, and we'll make sure you're on the list!</p>",
    '    <p>Looking forward to hearing from you!</p>',
    '    <p>Best,<br>' + brand + '</p>',
    '  </div>',
    '</body>',
    '</html>'
  ].join('\n');

  const textContent = [
    'Hey ' + greeting + '! 👋',
    'Thanks for subscribing to ' + CONFIG.BRAND_NAME + '!',
    'Quick question: are you actively interested in receiving our updates and content?',
    "Just reply \"yes\" or say hi, and we'll make sure you're on the list!",
    'Looking forward to hearing from you!',
    'Best,\n' + CONFIG.BRAND_NAME
  ].join('\n\n');

  return sendEmail(email, 'Quick question from ' + CONFIG.BRAND_NAME + '? 👋', htmlContent, textContent);
}

function sendWelcomeEmail(email, name) {
  const greeting = name || 'there';
  const brand = escapeHtml(CONFIG.BRAND_NAME);
  const htmlContent = [
    '<!DOCTYPE html>',
    '<html>',
    '<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">',
    '  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">',
    '    <h2 style="color: #667eea;">Welcome to ' + brand + '! 🎉</h2>',
    '    <p>Hi ' + escapeHtml(greeting) + ',</p>',
    "    <p>Thank you for confirming! You're now subscribed to our newsletter.</p>",
    "    <p>We're excited to share valuable content with you.</p>",
    '    <p>Best,<br>' + brand + '</p>',
    '  </div>',
    '</body>',
    '</html>'
  ].join('\n');

  const textContent = [
    'Welcome to ' + CONFIG.BRAND_NAME + '! 🎉',
    'Hi ' + greeting + ',',
    "Thank you for confirming! You're now subscribed to our newsletter.",
    "We're excited to share valuable content with you.",
    'Best,\n' + CONFIG.BRAND_NAME
  ].join('\n\n');

  return sendEmail(email, 'Welcome to ' + CONFIG.BRAND_NAME + '! 🎉', htmlContent, textContent);
}

/**
 * Marks a pending subscriber verified and sends the welcome email.
 * Example: manualVerify('user@example.com')
 */
function manualVerify(email) {
  if (!email || !isValidEmail(email)) {
    return 'Invalid email address';
  }
  const target = normalizeEmail(email);
  const data = initializeSheet().getDataRange().getValues();

  for (let i = 1; i < data.length; i++) {
    if (normalizeEmail(data[i][1]) !== target) {
      continue;
    }
    if ((data[i][5] || 'pending') === 'verified') {
      return 'Email already verified: ' + target;
    }
    updateSubscriberStatus(target, 'verified');
    sendWelcomeEmail(target, data[i][2] || '');
    logEvent({ event: 'MANUAL_VERIFY', details: target, status: 'SUCCESS' });
    Logger.log('Manually verified: ' + target);
    return '✓ Verified and sent welcome email to ' + target;
  }
  return 'Email not found in sheet: ' + target;
}
`

const verificationStub = `// ===== EMAIL VERIFICATION WORKFLOW (disabled) =====
function sendWarmingEmail(email, name) {
  Logger.log('Verification is disabled; no warming email sent to ' + email);
  return false;
}

function sendWelcomeEmail(email, name) {
  Logger.log('Verification is disabled; no welcome email sent to ' + email);
  return false;
}

function manualVerify(email) {
  return 'Verification is disabled for ' + CONFIG.BRAND_NAME;
}
`

var verificationTmpl = parse("verification", verificationTemplate)

// Verification emits the warming and welcome senders and manualVerify.
func Verification(b config.Brand) Fragment {
	f := Fragment{
		Name:     "verification",
		Provides: []string{"sendWarmingEmail", "sendWelcomeEmail", "manualVerify"},
	}
	if !b.Verification {
		f.Text = verificationStub
		f.Requires = []string{"CONFIG"}
		return f
	}
	f.Live = true
	f.Text = render(verificationTmpl, b)
	f.Requires = []string{
		"CONFIG",
		"escapeHtml",
		"sendEmail",
		"isValidEmail",
		"normalizeEmail",
		"initializeSheet",
		"updateSubscriberStatus",
		"logEvent",
	}
	return f
}
