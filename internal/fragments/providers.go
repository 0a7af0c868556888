package fragments

import "github.com/ziadkadry99/newsletter-kit/internal/config"

const providersTemplate = `// ===== MULTI-PROVIDER EMAIL WITH FAILOVER =====
/**
 * Sends through the primary provider. If that fails and failover is on,
 * tries the remaining configured providers in CONFIG.PROVIDER_PRIORITY
 * order and returns on the first success.
 */
function sendEmail(to, subject, htmlContent, textContent) {
  const primary = getEmailProvider();
  const attempted = [primary];
  let lastError;

  try {
    return sendEmailWithProvider(to, subject, htmlContent, textContent, primary);
  } catch (error) {
    lastError = error;
    Logger.log('Primary provider (' + primary + ') failed: ' + error);
    if (!isFailoverEnabled()) {
      throw error;
    }
  }

  const fallbacks = CONFIG.PROVIDER_PRIORITY.filter(function(p) {
    return p !== primary;
  });
  for (let i = 0; i < fallbacks.length; i++) {
    const provider = fallbacks[i];
    if (!hasProviderCredentials(provider)) {
      Logger.log('Skipping failover provider ' + provider + ': not configured');
      continue;
    }
    attempted.push(provider);
    try {
      Logger.log('Trying failover provider: ' + provider);
      return sendEmailWithProvider(to, subject, htmlContent, textContent, provider);
    } catch (error) {
      lastError = error;
      Logger.log('Failover provider (' + provider + ') failed: ' + error);
    }
  }

  throw new Error('All email providers failed (' + attempted.join(', ') + '). Last error: ' + lastError);
}

function sendEmailWithProvider(to, subject, htmlContent, textContent, provider) {
  Logger.log('Attempting to send email via ' + provider + ' to ' + to);
  switch (provider) {
    case 'sendpulse':
      return sendEmailViaSendPulse(to, subject, htmlContent, textContent);
    case 'brevo':
      return sendEmailViaBrevo(to, subject, htmlContent, textContent);
    case 'resend':
      return sendEmailViaResend(to, subject, htmlContent, textContent);
    case 'mailgun':
      return sendEmailViaMailgun(to, subject, htmlContent, textContent);
    case 'mailersend':
      return sendEmailViaMailerSend(to, subject, htmlContent, textContent);
    case 'sendgrid':
      return sendEmailViaSendGrid(to, subject, htmlContent, textContent);
    case 'gmail':
      return sendEmailViaGmail(to, subject, htmlContent, textContent);
    default:
      throw new Error('Unknown email provider: ' + provider);
  }
}

function plainText(htmlContent, textContent) {
  return textContent || String(htmlContent).replace(/<[^>]*>/g, '');
}

function postJson(url, headers, payload) {
  headers['Content-Type'] = 'application/json';
  return UrlFetchApp.fetch(url, {
    method: 'post',
    headers: headers,
    payload: JSON.stringify(payload),
    muteHttpExceptions: true
  });
}

function expectStatus(providerName, response, codes) {
  const code = response.getResponseCode();
  if (codes.indexOf(code) === -1) {
    throw new Error(providerName + ' error (' + code + '): ' + response.getContentText());
  }
}

function requireApiKey(provider, keyName) {
  const apiKey = getProviderApiKey(provider);
  if (!apiKey) {
    throw new Error(keyName + ' not configured');
  }
  return apiKey;
}

function sendEmailViaSendPulse(to, subject, htmlContent, textContent) {
  const accessToken = getSendPulseAccessToken();
  const response = postJson('https://api.sendpulse.com/smtp/emails', {
    'Authorization': 'Bearer ' + accessToken
  }, {
    email: {
      from: { email: getFromEmail(), name: CONFIG.FROM_NAME },
      to: [{ email: to }],
      subject: subject,
      html: htmlContent,
      text: plainText(htmlContent, textContent)
    }
  });
  expectStatus('SendPulse', response, [200, 201]);
  Logger.log('✓ Email sent via SendPulse to ' + to);
  return true;
}

function sendEmailViaBrevo(to, subject, htmlContent, textContent) {
  const apiKey = requireApiKey('brevo', 'BREVO_API_KEY');
  const response = postJson('https://api.brevo.com/v3/smtp/email', {
    'api-key': apiKey
  }, {
    sender: { email: getFromEmail(), name: CONFIG.FROM_NAME },
    to: [{ email: to }],
    subject: subject,
    htmlContent: htmlContent,
    textContent: plainText(htmlContent, textContent)
  });
  expectStatus('Brevo', response, [200, 201]);
  Logger.log('✓ Email sent via Brevo to ' + to);
  return true;
}

function sendEmailViaResend(to, subject, htmlContent, textContent) {
  const apiKey = requireApiKey('resend', 'RESEND_API_KEY');
  const response = postJson('https://api.resend.com/emails', {
    'Authorization': 'Bearer ' + apiKey
  }, {
    from: CONFIG.FROM_NAME + ' <' + getFromEmail() + '>',
    to: [to],
    subject: subject,
    html: htmlContent,
    text: plainText(htmlContent, textContent)
  });
  expectStatus('Resend', response, [200]);
  Logger.log('✓ Email sent via Resend to ' + to);
  return true;
}

function sendEmailViaMailgun(to, subject, htmlContent, textContent) {
  const apiKey = requireApiKey('mailgun', 'MAILGUN_API_KEY');
  const domain = getMailgunDomain();
  if (!domain) {
    throw new Error('MAILGUN_DOMAIN not configured');
  }
  // Mailgun takes a form payload, not JSON.
  const response = UrlFetchApp.fetch('https://api.mailgun.net/v3/' + domain + '/messages', {
    method: 'post',
    headers: {
      'Authorization': 'Basic ' + Utilities.base64Encode('api:' + apiKey)
    },
    payload: {
      from: CONFIG.FROM_NAME + ' <' + getFromEmail() + '>',
      to: to,
      subject: subject,
      html: htmlContent,
      text: plainText(htmlContent, textContent)
    },
    muteHttpExceptions: true
  });
  expectStatus('Mailgun', response, [200]);
  Logger.log('✓ Email sent via Mailgun to ' + to);
  return true;
}

function sendEmailViaMailerSend(to, subject, htmlContent, textContent) {
  const apiKey = requireApiKey('mailersend', 'MAILERSEND_API_KEY');
  const response = postJson('https://api.mailersend.com/v1/email', {
    'Authorization': 'Bearer ' + apiKey
  }, {
    from: { email: getFromEmail(), name: CONFIG.FROM_NAME },
    to: [{ email: to }],
    subject: subject,
    html: htmlContent,
    text: plainText(htmlContent, textContent)
  });
  expectStatus('MailerSend', response, [200, 202]);
  Logger.log('✓ Email sent via MailerSend to ' + to);
  return true;
}

function sendEmailViaSendGrid(to, subject, htmlContent, textContent) {
  const apiKey = requireApiKey('sendgrid', 'SENDGRID_API_KEY');
  const response = postJson('https://api.sendgrid.com/v3/mail/send', {
    'Authorization': 'Bearer ' + apiKey
  }, {
    personalizations: [{ to: [{ email: to }] }],
    from: { email: getFromEmail(), name: CONFIG.FROM_NAME },
    subject: subject,
    content: [
      { type: 'text/plain', value: plainText(htmlContent, textContent) },
      { type: 'text/html', value: htmlContent }
    ]
  });
  expectStatus('SendGrid', response, [202]);
  Logger.log('✓ Email sent via SendGrid to ' + to);
  return true;
}

function sendEmailViaGmail(to, subject, htmlContent, textContent) {
  try {
    GmailApp.sendEmail(to, subject, plainText(htmlContent, textContent), {
      htmlBody: htmlContent,
      name: CONFIG.FROM_NAME
    });
  } catch (error) {
    throw new Error('Gmail error: ' + error.message);
  }
  Logger.log('✓ Email sent via Gmail to ' + to);
  return true;
}
`

var providersTmpl = parse("providers", providersTemplate)

// Providers emits sendEmail and one sender per supported provider.
func Providers(b config.Brand) Fragment {
	return Fragment{
		Name: "providers",
		Live: true,
		Text: render(providersTmpl, b),
		Provides: []string{
			"sendEmail",
			"sendEmailWithProvider",
			"plainText",
			"sendEmailViaSendPulse",
			"sendEmailViaBrevo",
			"sendEmailViaResend",
			"sendEmailViaMailgun",
			"sendEmailViaMailerSend",
			"sendEmailViaSendGrid",
			"sendEmailViaGmail",
		},
		Requires: []string{
			"CONFIG",
			"getEmailProvider",
			"isFailoverEnabled",
			"hasProviderCredentials",
			"getProviderApiKey",
			"getFromEmail",
			"getSendPulseAccessToken",
			"getMailgunDomain",
		},
	}
}
