package pages

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ziadkadry99/newsletter-kit/internal/config"
)

func acme() config.Brand {
	return config.Brand{
		BrandName:     "Acme",
		EmailProvider: config.ProviderResend,
		SenderEmail:   "news@acme.test",
		Template:      config.TemplateMinimal,
		Frequency:     "weekly",
		Verification:  true,
	}
}

func TestFormPage(t *testing.T) {
	html := Form(acme())
	assert.Contains(t, html, "<title>Subscribe - Acme</title>")
	assert.Contains(t, html, "<h1>Subscribe to Acme</h1>")
	assert.Contains(t, html, DefaultSubtitle)
	assert.Contains(t, html, `source: 'web_form'`)
	assert.Contains(t, html, `window.location.href.split('?')[0]`)
	assert.Contains(t, html, `endpoint + '?thankyou=true'`)
	assert.Contains(t, html, `/^[^\s@]+@[^\s@]+\.[^\s@]+$/`)
	assert.Contains(t, html, `id="dismiss"`)
	assert.Contains(t, html, `id="spinner"`)

	b := acme()
	b.BrandBio = "Anvils for everyone."
	assert.Contains(t, Form(b), `<p class="subtitle">Anvils for everyone.</p>`)
}

func TestConfirmationPage(t *testing.T) {
	on := Confirmation(acme())
	assert.Contains(t, on, "<title>Thank You - Acme</title>")
	assert.Contains(t, on, "You're All Set! 🎉")
	assert.Contains(t, on, "reply to confirm your subscription")
	assert.Contains(t, on, "Start receiving weekly updates")

	b := acme()
	b.Verification = false
	b.Frequency = ""
	off := Confirmation(b)
	assert.NotContains(t, off, "reply to confirm")
	assert.Contains(t, off, "You'll start receiving our updates soon.")
	assert.Contains(t, off, "Look out for weekly updates from us")
}

func TestPagesEscapeBrandValues(t *testing.T) {
	b := acme()
	b.BrandName = `<script>alert("x")</script> & 'Co'`
	b.BrandBio = "<b>bold</b>"
	b.Frequency = "<i>weekly</i>"

	for name, html := range map[string]string{"form": Form(b), "confirmation": Confirmation(b)} {
		assert.NotContains(t, html, "<script>alert", name)
		assert.NotContains(t, html, "<b>bold", name)
		assert.NotContains(t, html, "<i>weekly", name)
		assert.Contains(t, html, "&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt; &amp; &#039;Co&#039;", name)
	}
}

func TestPagesDeterministic(t *testing.T) {
	assert.Equal(t, Form(acme()), Form(acme()))
	assert.Equal(t, Confirmation(acme()), Confirmation(acme()))
	assert.False(t, strings.Contains(Form(acme()), "{{"))
}
