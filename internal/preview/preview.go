// Package preview renders a sample newsletter the way the deployed script
// would: the same prompt, a model answer, and the configured email wrapper.
package preview

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ziadkadry99/newsletter-kit/internal/config"
	"github.com/ziadkadry99/newsletter-kit/internal/fragments"
	"github.com/ziadkadry99/newsletter-kit/internal/llm"
	"github.com/ziadkadry99/newsletter-kit/internal/markdown"
)

// ErrEmptyAnswer is returned when the model produces no content.
var ErrEmptyAnswer = errors.New("model returned no content")

// Result is a rendered preview.
type Result struct {
	Subject string
	// Content is the model answer as HTML, before wrapping.
	Content string
	// HTML is the full email as subscribers would receive it.
	HTML         string
	Model        string
	InputTokens  int
	OutputTokens int
	// Cost is the estimated spend in USD, zero for unpriced models.
	Cost float64
}

// Generate asks p for a newsletter for b and wraps the answer. model may be
// empty to use the provider default.
func Generate(ctx context.Context, p llm.Provider, b config.Brand, model string) (*Result, error) {
	resp, err := p.Complete(ctx, llm.CompletionRequest{
		Model:    model,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: fragments.Prompt(b)}},
	})
	if err != nil {
		return nil, fmt.Errorf("requesting content from %s: %w", p.Name(), err)
	}

	answer := strings.TrimSpace(markdown.Unfence(resp.Content))
	if answer == "" {
		return nil, ErrEmptyAnswer
	}

	content, err := markdown.Render(answer)
	if err != nil {
		return nil, err
	}

	return &Result{
		Subject:      b.BrandName + " Newsletter",
		Content:      content,
		HTML:         fragments.Wrap(b.Template, b.BrandName, content),
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		Cost:         llm.EstimateCost(resp.Model, resp.InputTokens, resp.OutputTokens),
	}, nil
}
