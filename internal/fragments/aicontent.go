package fragments

import "github.com/ziadkadry99/newsletter-kit/internal/config"

// GeminiEndpoint is the generateContent URL the live AI block calls.
const GeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/" + config.DefaultGemini + ":generateContent"

const aiTemplate = `// ===== AI CONTENT GENERATION =====
const GEMINI_ENDPOINT = {{ js .Endpoint }};

function buildNewsletterPrompt() {
  const parts = [{{ js .Prompt.Intro }} + CONFIG.BRAND_NAME + '.'];
  if (CONFIG.BRAND_BIO) {
    parts.push({{ js .Prompt.Bio }} + CONFIG.BRAND_BIO);
  }
  if (CONFIG.BRAND_VOICE) {
    parts.push({{ js .Prompt.Voice }} + CONFIG.BRAND_VOICE);
  }
  if (CONFIG.SAMPLE_CONTENT) {
    parts.push({{ js .Prompt.Sample }} + CONFIG.SAMPLE_CONTENT);
  }
  parts.push({{ js .Prompt.Format }});
  return parts.join('\n\n');
}

/**
 * Asks Gemini for this issue's newsletter body. Returns the HTML text, or
 * null when the key is missing or the response has an unexpected shape.
 */
function generateAIContent() {
  const apiKey = getGeminiKey();
  if (!apiKey) {
    return null;
  }
  const response = UrlFetchApp.fetch(GEMINI_ENDPOINT, {
    method: 'post',
    contentType: 'application/json',
    headers: { 'x-goog-api-key': apiKey },
    payload: JSON.stringify({
      contents: [{ parts: [{ text: buildNewsletterPrompt() }] }]
    }),
    muteHttpExceptions: true
  });
  if (response.getResponseCode() !== 200) {
    Logger.log('Gemini request failed: ' + response.getResponseCode() + ' ' + response.getContentText());
    return null;
  }
  try {
    const data = JSON.parse(response.getContentText());
    return data.candidates[0].content.parts[0].text || null;
  } catch (error) {
    Logger.log('Unexpected Gemini response: ' + error);
    return null;
  }
}
`

const aiStub = `// ===== AI CONTENT GENERATION (disabled: no Gemini key supplied) =====
function generateAIContent() {
  return null;
}
`

var aiTmpl = parse("ai", aiTemplate)

// AIContent emits the Gemini caller when the brand has a key. The key
// itself stays in Script Properties.
func AIContent(b config.Brand) Fragment {
	f := Fragment{
		Name:     "ai",
		Provides: []string{"generateAIContent"},
	}
	if !b.HasAI() {
		f.Text = aiStub
		return f
	}
	f.Live = true
	f.Text = render(aiTmpl, b)
	f.Requires = []string{"CONFIG", "getGeminiKey"}
	return f
}
