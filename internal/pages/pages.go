// Package pages renders the static HTML pages served by the generated Web
// App: the subscription form (index.html) and the confirmation page
// (thank-you.html).
package pages

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/ziadkadry99/newsletter-kit/internal/config"
	"github.com/ziadkadry99/newsletter-kit/internal/escape"
)

// DefaultSubtitle is shown under the form heading when the brand has no bio.
const DefaultSubtitle = "Get the latest updates and exclusive content delivered to your inbox."

// Form returns index.html for b.
func Form(b config.Brand) string {
	return render(formTmpl, b)
}

// Confirmation returns thank-you.html for b.
func Confirmation(b config.Brand) string {
	return render(confirmationTmpl, b)
}

type page struct {
	config.Brand
	Subtitle string
}

func render(t *template.Template, b config.Brand) string {
	p := page{Brand: b, Subtitle: b.BrandBio}
	if strings.TrimSpace(p.Subtitle) == "" {
		p.Subtitle = DefaultSubtitle
	}
	var buf strings.Builder
	if err := t.Execute(&buf, p); err != nil {
		panic(fmt.Sprintf("pages: rendering %s: %v", t.Name(), err))
	}
	return buf.String()
}

// Brand values are escaped explicitly; html/template would emit numeric
// entities for quotes.
var funcs = template.FuncMap{"esc": escape.HTML}

var (
	formTmpl         = template.Must(template.New("index.html").Funcs(funcs).Parse(formTemplate))
	confirmationTmpl = template.Must(template.New("thank-you.html").Funcs(funcs).Parse(confirmationTemplate))
)

const sharedStyle = `
    * { margin: 0; padding: 0; box-sizing: border-box; }
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
      background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
      min-height: 100vh;
      display: flex;
      align-items: center;
      justify-content: center;
      padding: 20px;
    }
    .card {
      background: #ffffff;
      border-radius: 16px;
      padding: 40px;
      max-width: 520px;
      width: 100%;
      box-shadow: 0 20px 60px rgba(0, 0, 0, 0.3);
    }
    h1 { color: #333; margin-bottom: 12px; font-size: 28px; }
    .subtitle { color: #666; line-height: 1.6; margin-bottom: 28px; }
    .footer { text-align: center; margin-top: 24px; font-size: 12px; color: #999; }`

const formTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Subscribe - {{ esc .BrandName }}</title>
  <style>` + sharedStyle + `
    .field { margin-bottom: 18px; }
    label { display: block; margin-bottom: 6px; color: #333; font-weight: 500; font-size: 14px; }
    input {
      width: 100%;
      padding: 12px 14px;
      border: 2px solid #e0e0e0;
      border-radius: 8px;
      font-size: 16px;
      font-family: inherit;
    }
    input:focus { outline: none; border-color: #667eea; }
    button[type="submit"] {
      width: 100%;
      padding: 14px;
      background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
      color: #ffffff;
      border: none;
      border-radius: 8px;
      font-size: 16px;
      font-weight: 600;
      cursor: pointer;
      display: flex;
      align-items: center;
      justify-content: center;
      gap: 10px;
    }
    button[type="submit"]:disabled { opacity: 0.7; cursor: not-allowed; }
    .spinner {
      display: none;
      width: 18px;
      height: 18px;
      border: 3px solid #ffffff;
      border-top-color: transparent;
      border-radius: 50%;
      animation: spin 0.8s linear infinite;
    }
    @keyframes spin { to { transform: rotate(360deg); } }
    .error {
      display: none;
      margin-top: 16px;
      padding: 12px 40px 12px 14px;
      position: relative;
      border-radius: 8px;
      background: #f8d7da;
      color: #721c24;
      border: 1px solid #f5c6cb;
      font-size: 14px;
    }
    .error .dismiss {
      position: absolute;
      top: 8px;
      right: 10px;
      background: none;
      border: none;
      color: inherit;
      font-size: 18px;
      cursor: pointer;
    }
  </style>
</head>
<body>
  <div class="card">
    <h1>Subscribe to {{ esc .BrandName }}</h1>
    <p class="subtitle">{{ esc .Subtitle }}</p>

    <form id="subscribeForm" novalidate>
      <div class="field">
        <label for="name">Your Name</label>
        <input type="text" id="name" name="name" placeholder="Jane Doe" autocomplete="name">
      </div>
      <div class="field">
        <label for="email">Email Address</label>
        <input type="email" id="email" name="email" required placeholder="you@example.com" autocomplete="email">
      </div>
      <button type="submit" id="submitBtn">
        <span id="btnText">Subscribe Now</span>
        <span class="spinner" id="spinner"></span>
      </button>
    </form>

    <div class="error" id="error" role="alert">
      <span id="errorText"></span>
      <button type="button" class="dismiss" id="dismiss" aria-label="Dismiss">&times;</button>
    </div>

    <p class="footer">Powered by {{ esc .BrandName }}</p>
  </div>

  <script>
  (function() {
    'use strict';

    var form = document.getElementById('subscribeForm');
    var submitBtn = document.getElementById('submitBtn');
    var btnText = document.getElementById('btnText');
    var spinner = document.getElementById('spinner');
    var errorBox = document.getElementById('error');
    var errorText = document.getElementById('errorText');
    var nameInput = document.getElementById('name');
    var emailInput = document.getElementById('email');
    var endpoint = window.location.href.split('?')[0];
    var EMAIL_PATTERN = /^[^\s@]+@[^\s@]+\.[^\s@]+$/;

    function showError(text) {
      errorText.textContent = text;
      errorBox.style.display = 'block';
    }

    function hideError() {
      errorBox.style.display = 'none';
    }

    function setLoading(loading) {
      submitBtn.disabled = loading;
      btnText.textContent = loading ? 'Subscribing...' : 'Subscribe Now';
      spinner.style.display = loading ? 'inline-block' : 'none';
    }

    document.getElementById('dismiss').addEventListener('click', hideError);

    form.addEventListener('submit', function(e) {
      e.preventDefault();
      var name = nameInput.value.trim();
      var email = emailInput.value.trim();

      if (!EMAIL_PATTERN.test(email)) {
        showError('Please enter a valid email address');
        emailInput.focus();
        return;
      }

      hideError();
      setLoading(true);

      fetch(endpoint, {
        method: 'POST',
        headers: { 'Content-Type': 'text/plain;charset=utf-8' },
        body: JSON.stringify({
          name: name,
          email: email,
          source: 'web_form',
          timestamp: new Date().toISOString()
        })
      })
        .then(function(response) {
          return response.json();
        })
        .then(function(data) {
          if (!data.success) {
            throw new Error(data.error || 'Subscription failed');
          }
          window.location.href = endpoint + '?thankyou=true';
        })
        .catch(function(error) {
          setLoading(false);
          showError(error.message || 'Something went wrong. Please try again.');
        });
    });
  })();
  </script>
</body>
</html>
`

const confirmationTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Thank You - {{ esc .BrandName }}</title>
  <style>` + sharedStyle + `
    .card { text-align: center; }
    .badge {
      width: 72px;
      height: 72px;
      margin: 0 auto 24px;
      border-radius: 50%;
      background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
      color: #ffffff;
      font-size: 36px;
      line-height: 72px;
    }
    .next-steps { background: #f8f9fa; border-radius: 12px; padding: 24px; text-align: left; }
    .next-steps h2 { font-size: 18px; color: #333; margin-bottom: 12px; text-align: center; }
    .next-steps li { color: #555; line-height: 1.5; margin: 10px 0 10px 20px; }
  </style>
</head>
<body>
  <div class="card">
    <div class="badge">&#10003;</div>
    <h1>You're All Set! 🎉</h1>
    <p class="subtitle">
      Thank you for subscribing to <strong>{{ esc .BrandName }}</strong>!
{{- if .Verification }}
      We've sent you an email. Please check your inbox and reply to confirm your subscription.
{{- else }}
      You'll start receiving our updates soon.
{{- end }}
    </p>

    <div class="next-steps">
      <h2>What Happens Next?</h2>
      <ul>
{{- if .Verification }}
        <li>Check your inbox for our email (and your spam folder, just in case)</li>
        <li>Reply to that email to confirm your subscription</li>
        <li>Start receiving {{ esc .Cadence }} updates once you're confirmed</li>
{{- else }}
        <li>Look out for {{ esc .Cadence }} updates from us</li>
        <li>Add our address to your contacts so nothing lands in spam</li>
        <li>Reply anytime, we love hearing from subscribers</li>
{{- end }}
      </ul>
    </div>

    <p class="footer">Powered by {{ esc .BrandName }}</p>
  </div>
</body>
</html>
`
