package preview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/newsletter-kit/internal/config"
	"github.com/ziadkadry99/newsletter-kit/internal/fragments"
	"github.com/ziadkadry99/newsletter-kit/internal/llm"
)

// stubProvider records requests and returns a canned answer.
type stubProvider struct {
	calls  []llm.CompletionRequest
	answer string
	err    error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{
		Content:      s.answer,
		Model:        "gemini-2.5-flash",
		InputTokens:  1000,
		OutputTokens: 400,
	}, nil
}

var brand = config.Brand{
	BrandName:  "Acme & Co",
	BrandBio:   "Tools for makers",
	BrandVoice: "friendly",
	Template:   config.TemplateMinimal,
}

func TestGenerateUsesScriptPrompt(t *testing.T) {
	p := &stubProvider{answer: "```html\n<h2>Hello makers</h2>\n<p>News.</p>\n```"}

	res, err := Generate(context.Background(), p, brand, "gemini-2.5-flash")
	require.NoError(t, err)

	require.Len(t, p.calls, 1)
	assert.Equal(t, "gemini-2.5-flash", p.calls[0].Model)
	require.Len(t, p.calls[0].Messages, 1)
	assert.Equal(t, fragments.Prompt(brand), p.calls[0].Messages[0].Content)

	assert.Equal(t, "Acme & Co Newsletter", res.Subject)
	assert.Contains(t, res.Content, "<h2>Hello makers</h2>")
	assert.NotContains(t, res.Content, "<pre>")
	assert.Equal(t, fragments.Wrap(config.TemplateMinimal, brand.BrandName, res.Content), res.HTML)
	assert.Contains(t, res.HTML, "Acme &amp; Co")
	assert.Greater(t, res.Cost, 0.0)
}

func TestGenerateRendersMarkdownAnswers(t *testing.T) {
	p := &stubProvider{answer: "## This week\n\n- one\n- two"}

	res, err := Generate(context.Background(), p, brand, "")
	require.NoError(t, err)
	assert.Contains(t, res.Content, `<h2 id="this-week">This week</h2>`)
	assert.Contains(t, res.Content, "<li>one</li>")
}

func TestGenerateErrors(t *testing.T) {
	_, err := Generate(context.Background(), &stubProvider{answer: "  \n"}, brand, "")
	assert.ErrorIs(t, err, ErrEmptyAnswer)

	boom := errors.New("quota exceeded")
	_, err = Generate(context.Background(), &stubProvider{err: boom}, brand, "")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "stub")
}
