package fragments

import "github.com/ziadkadry99/newsletter-kit/internal/config"

const credentialsTemplate = `// ===== CREDENTIALS (Script Properties) =====
// Set these in Project Settings > Script Properties. Nothing secret is
// stored in this file.

function getScriptProperty(key) {
  return PropertiesService.getScriptProperties().getProperty(key);
}

function getFromEmail() {
  const email = getScriptProperty('FROM_EMAIL');
  if (!email) {
    throw new Error('FROM_EMAIL not configured in Script Properties');
  }
  return email;
}

function getEmailProvider() {
  return String(getScriptProperty('EMAIL_PROVIDER') || CONFIG.PRIMARY_PROVIDER).trim().toLowerCase();
}

/**
 * Failover is on unless ENABLE_FAILOVER is set to something other than "true".
 */
function isFailoverEnabled() {
  const value = getScriptProperty('ENABLE_FAILOVER');
  return value === null || value === undefined || value === '' || String(value).toLowerCase() === 'true';
}

function getProviderApiKey(provider) {
  const keyMap = {
{{- range .APIKeys }}
    {{ .Name }}: '{{ .APIKey }}',
{{- end }}
  };
  const key = keyMap[provider];
  return key ? getScriptProperty(key) : null;
}

function getSendPulseCredentials() {
  return {
    id: getScriptProperty('SENDPULSE_API_ID'),
    secret: getScriptProperty('SENDPULSE_API_SECRET')
  };
}

function getMailgunDomain() {
  return getScriptProperty('MAILGUN_DOMAIN');
}

/**
 * Reports whether the secrets a provider needs are present. Gmail sends as
 * the script owner and needs none.
 */
function hasProviderCredentials(provider) {
  if (provider === 'gmail') {
    return true;
  }
  if (provider === 'sendpulse') {
    const creds = getSendPulseCredentials();
    return Boolean(creds.id && creds.secret);
  }
  if (provider === 'mailgun') {
    return Boolean(getProviderApiKey('mailgun') && getMailgunDomain());
  }
  return Boolean(getProviderApiKey(provider));
}

/**
 * SendPulse uses OAuth client credentials. The token is cached in Script
 * Properties until five minutes before it expires.
 */
function getSendPulseAccessToken() {
  const props = PropertiesService.getScriptProperties();
  const cached = props.getProperty('SENDPULSE_TOKEN');
  const expiry = Number(props.getProperty('SENDPULSE_TOKEN_EXPIRY') || 0);
  if (cached && Date.now() < expiry) {
    return cached;
  }

  const creds = getSendPulseCredentials();
  if (!creds.id || !creds.secret) {
    throw new Error('SENDPULSE_API_ID and SENDPULSE_API_SECRET not configured');
  }
  const response = UrlFetchApp.fetch('https://api.sendpulse.com/oauth/access_token', {
    method: 'post',
    contentType: 'application/json',
    payload: JSON.stringify({
      grant_type: 'client_credentials',
      client_id: creds.id,
      client_secret: creds.secret
    }),
    muteHttpExceptions: true
  });
  if (response.getResponseCode() !== 200) {
    throw new Error('SendPulse auth error: ' + response.getContentText());
  }
  const data = JSON.parse(response.getContentText());
  const ttlSeconds = Number(data.expires_in || 3600) - 300;
  props.setProperty('SENDPULSE_TOKEN', data.access_token);
  props.setProperty('SENDPULSE_TOKEN_EXPIRY', String(Date.now() + ttlSeconds * 1000));
  return data.access_token;
}

function getGeminiKey() {
  const key = getScriptProperty('GEMINI_API_KEY');
  if (!key) {
    Logger.log('GEMINI_API_KEY is not set in Script Properties');
  }
  return key;
}
`

var credentialsTmpl = parse("credentials", credentialsTemplate)

// Credentials emits accessors that read secrets from Script Properties at
// run time.
func Credentials(b config.Brand) Fragment {
	return Fragment{
		Name: "credentials",
		Live: true,
		Text: render(credentialsTmpl, b),
		Provides: []string{
			"getScriptProperty",
			"getFromEmail",
			"getEmailProvider",
			"isFailoverEnabled",
			"getProviderApiKey",
			"getSendPulseCredentials",
			"getMailgunDomain",
			"hasProviderCredentials",
			"getSendPulseAccessToken",
			"getGeminiKey",
		},
		Requires: []string{"CONFIG"},
	}
}
