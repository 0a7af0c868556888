// Package llm talks to the language models used to preview newsletter
// content before the generated script produces it on a schedule.
package llm

import "context"

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}

// Option configures a provider.
type Option func(*options)

type options struct {
	baseURL string
}

// WithBaseURL points a provider at a different API root, such as a proxy
// or a test server.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
