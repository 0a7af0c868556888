// Package bundle composes the deployable package: the generated script, the
// two pages and the setup instructions.
package bundle

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ziadkadry99/newsletter-kit/internal/config"
	"github.com/ziadkadry99/newsletter-kit/internal/pages"
	"github.com/ziadkadry99/newsletter-kit/internal/script"
)

// File names inside a bundle, in bundle order.
const (
	FileScript       = "Code.gs"
	FileForm         = "index.html"
	FileConfirmation = "thank-you.html"
	FileInstructions = "INSTRUCTIONS.md"
)

// File is one named file of a bundle.
type File struct {
	Name    string
	Content string
}

// Features summarizes what a bundle was generated with.
type Features struct {
	Verification   bool
	GmailDetection bool
	AIContent      bool
	Warmup         bool
	AutoProvision  bool
	Template       config.Template
	Provider       config.EmailProvider
}

func featuresOf(b config.Brand) Features {
	return Features{
		Verification:   b.Verification,
		GmailDetection: b.Gmail,
		AIContent:      b.HasAI(),
		Warmup:         b.Warmup,
		AutoProvision:  b.AutoProvision(),
		Template:       b.Template,
		Provider:       b.EmailProvider,
	}
}

// Bundle is a generated package.
type Bundle struct {
	Brand        config.Brand
	Files        []File
	Instructions string
	Features     Features

	generatedAt time.Time
}

// Option configures Generate.
type Option func(*options)

type options struct {
	generatedAt time.Time
}

// WithGeneratedAt stamps the script header and the combined bundle with t.
func WithGeneratedAt(t time.Time) Option {
	return func(o *options) {
		o.generatedAt = t
	}
}

// Generate validates b and renders every file of the bundle. Validation
// failures are returned as *config.ValidationError.
func Generate(b config.Brand, opts ...Option) (*Bundle, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	var scriptOpts []script.Option
	if !o.generatedAt.IsZero() {
		scriptOpts = append(scriptOpts, script.WithGeneratedAt(o.generatedAt))
	}
	s, err := script.Assemble(b, scriptOpts...)
	if err != nil {
		return nil, fmt.Errorf("assembling %s: %w", FileScript, err)
	}

	instructions, err := renderInstructions(b)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", FileInstructions, err)
	}

	return &Bundle{
		Brand: b,
		Files: []File{
			{Name: FileScript, Content: s.Text},
			{Name: FileForm, Content: pages.Form(b)},
			{Name: FileConfirmation, Content: pages.Confirmation(b)},
			{Name: FileInstructions, Content: instructions},
		},
		Instructions: instructions,
		Features:     featuresOf(b),
		generatedAt:  o.generatedAt,
	}, nil
}

// File returns the named file.
func (b *Bundle) File(name string) (File, bool) {
	for _, f := range b.Files {
		if f.Name == name {
			return f, true
		}
	}
	return File{}, false
}

// Map returns the files keyed by name.
func (b *Bundle) Map() map[string]string {
	m := make(map[string]string, len(b.Files))
	for _, f := range b.Files {
		m[f.Name] = f.Content
	}
	return m
}

var rule = strings.Repeat("=", 80)

// Combined returns every file in one text, each introduced by a FILE: line.
func (b *Bundle) Combined() string {
	var sb strings.Builder
	sb.WriteString(rule + "\n")
	sb.WriteString("NEWSLETTER AUTOMATION - COMPLETE CODE PACKAGE\n")
	sb.WriteString("Brand: " + b.Brand.BrandName + "\n")
	if !b.generatedAt.IsZero() {
		sb.WriteString("Generated: " + b.generatedAt.UTC().Format(time.RFC3339) + "\n")
	}
	sb.WriteString(rule + "\n")
	for _, f := range b.Files {
		sb.WriteString("\n" + rule + "\n")
		sb.WriteString("FILE: " + f.Name + "\n")
		sb.WriteString(rule + "\n\n")
		sb.WriteString(f.Content)
		if !strings.HasSuffix(f.Content, "\n") {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Digest is the hex SHA-256 of Combined.
func (b *Bundle) Digest() string {
	sum := sha256.Sum256([]byte(b.Combined()))
	return hex.EncodeToString(sum[:])
}
