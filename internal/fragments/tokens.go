package fragments

import "github.com/ziadkadry99/newsletter-kit/internal/config"

const tokensTemplate = `// ===== TOKEN LIFECYCLE =====
const TOKEN_HEADERS = ['Token', 'Email', 'Created', 'Expires'];

function getTokensSheet() {
  return getOrMakeSheet(CONFIG.TOKENS_SHEET, TOKEN_HEADERS, '#ff9800');
}

/**
 * Creates a 32-character hex token for email, valid for
 * CONFIG.TOKEN_TTL_HOURS. Expired tokens are removed on every call.
 */
function generateToken(email) {
  const seed = email + ':' + Date.now() + ':' + Math.random();
  const digest = Utilities.computeDigest(Utilities.DigestAlgorithm.SHA_256, seed);
  const token = digest.map(function(b) {
    const hex = (b < 0 ? b + 256 : b).toString(16);
    return hex.length === 1 ? '0' + hex : hex;
  }).join('').substring(0, 32);

  const created = new Date();
  const expires = new Date(created.getTime() + CONFIG.TOKEN_TTL_HOURS * 60 * 60 * 1000);
  getTokensSheet().appendRow([token, email, created, expires]);
  cleanupExpiredTokens();
  return token;
}

/**
 * Returns the email a token was issued for, or null when the token is
 * unknown or expired. An expired token is deleted.
 */
function validateToken(token) {
  if (!token) {
    return null;
  }
  const sheet = getTokensSheet();
  const data = sheet.getDataRange().getValues();
  for (let i = 1; i < data.length; i++) {
    if (data[i][0] !== token) {
      continue;
    }
    if (new Date(data[i][3]).getTime() < Date.now()) {
      sheet.deleteRow(i + 1);
      return null;
    }
    return data[i][1];
  }
  return null;
}

function deleteToken(token) {
  const sheet = getTokensSheet();
  const data = sheet.getDataRange().getValues();
  for (let i = data.length - 1; i >= 1; i--) {
    if (data[i][0] === token) {
      sheet.deleteRow(i + 1);
      return true;
    }
  }
  return false;
}

function cleanupExpiredTokens() {
  const sheet = getTokensSheet();
  const data = sheet.getDataRange().getValues();
  const now = Date.now();
  let removed = 0;
  // Bottom-up so deleting a row does not shift the ones still to visit.
  for (let i = data.length - 1; i >= 1; i--) {
    if (new Date(data[i][3]).getTime() < now) {
      sheet.deleteRow(i + 1);
      removed++;
    }
  }
  return removed;
}
`

const tokensStub = `// ===== TOKEN LIFECYCLE (disabled: verification is off) =====
function generateToken(email) {
  return '';
}

function validateToken(token) {
  return null;
}

function deleteToken(token) {
  return false;
}

function cleanupExpiredTokens() {
  return 0;
}
`

var tokensTmpl = parse("tokens", tokensTemplate)

// Tokens emits verification-token handling. Tokens live in their own
// sheet with a 24 hour lifetime.
func Tokens(b config.Brand) Fragment {
	f := Fragment{
		Name:     "tokens",
		Provides: []string{"generateToken", "validateToken", "deleteToken", "cleanupExpiredTokens"},
	}
	if !b.Verification {
		f.Text = tokensStub
		return f
	}
	f.Live = true
	f.Text = render(tokensTmpl, b)
	f.Requires = []string{"CONFIG", "getOrMakeSheet"}
	return f
}
