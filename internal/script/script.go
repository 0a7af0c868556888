// Package script assembles the generated Code.gs from its fragments.
package script

import (
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/ziadkadry99/newsletter-kit/internal/config"
	"github.com/ziadkadry99/newsletter-kit/internal/escape"
	"github.com/ziadkadry99/newsletter-kit/internal/fragments"
)

// Generator renders one fragment slot.
type Generator func(config.Brand) fragments.Fragment

// Order is the fixed slot order of a generated script, between the header
// and footer comments.
var Order = []Generator{
	fragments.ConfigBlock,
	fragments.Credentials,
	fragments.Storage,
	fragments.Tokens,
	fragments.Providers,
	fragments.Verification,
	fragments.ReplyDetection,
	fragments.EmailTemplates,
	fragments.AIContent,
	fragments.Scheduling,
	fragments.Webhook,
	fragments.Diagnostics,
}

// Script is an assembled Code.gs.
type Script struct {
	Fragments []fragments.Fragment
	Text      string
}

// Defines reports whether any fragment provides symbol.
func (s *Script) Defines(symbol string) bool {
	for _, f := range s.Fragments {
		for _, p := range f.Provides {
			if p == symbol {
				return true
			}
		}
	}
	return false
}

// CompositionError reports symbols a fragment requires that no fragment in
// the script provides.
type CompositionError struct {
	Fragment string
	Missing  []string
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("fragment %q requires undefined symbols: %s", e.Fragment, strings.Join(e.Missing, ", "))
}

// Option configures Assemble.
type Option func(*options)

type options struct {
	generatedAt time.Time
}

// WithGeneratedAt stamps the header with t. Without it the output depends
// on the brand only.
func WithGeneratedAt(t time.Time) Option {
	return func(o *options) {
		o.generatedAt = t
	}
}

// Assemble renders every slot for b in Order and checks that each
// fragment's requirements are met.
func Assemble(b config.Brand, opts ...Option) (*Script, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return assemble(b, Order, o)
}

func assemble(b config.Brand, gens []Generator, o options) (*Script, error) {
	s := &Script{Fragments: make([]fragments.Fragment, 0, len(gens))}
	provided := make(map[string]bool)
	for _, gen := range gens {
		f := gen(b)
		s.Fragments = append(s.Fragments, f)
		for _, p := range f.Provides {
			provided[p] = true
		}
	}

	for _, f := range s.Fragments {
		var missing []string
		for _, r := range f.Requires {
			if !provided[r] {
				missing = append(missing, r)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return nil, &CompositionError{Fragment: f.Name, Missing: missing}
		}
	}

	var buf strings.Builder
	if err := headerTmpl.Execute(&buf, newFrame(b, o)); err != nil {
		return nil, fmt.Errorf("rendering header: %w", err)
	}
	for _, f := range s.Fragments {
		buf.WriteString("\n")
		buf.WriteString(strings.TrimRight(f.Text, "\n"))
		buf.WriteString("\n")
	}
	buf.WriteString("\n")
	if err := footerTmpl.Execute(&buf, newFrame(b, o)); err != nil {
		return nil, fmt.Errorf("rendering footer: %w", err)
	}
	s.Text = buf.String()
	return s, nil
}

// frame is the data for the header and footer comments.
type frame struct {
	Brand       string
	Provider    string
	Template    string
	Storage     string
	GeneratedAt string
	Features    []string
	Steps       []string
}

func newFrame(b config.Brand, o options) frame {
	fr := frame{
		Brand:    b.BrandName,
		Provider: b.EmailProvider.Info().DisplayName,
		Template: string(b.Template),
		Storage:  "existing spreadsheet",
	}
	if b.AutoProvision() {
		fr.Storage = "spreadsheet created on first run"
	}
	if !o.generatedAt.IsZero() {
		fr.GeneratedAt = o.generatedAt.UTC().Format(time.RFC3339)
	}

	fr.Features = append(fr.Features, onOff("Email verification", b.Verification))
	fr.Features = append(fr.Features, onOff("Gmail reply detection", b.Gmail))
	fr.Features = append(fr.Features, onOff("AI content", b.HasAI()))
	fr.Features = append(fr.Features, onOff("Warm-up throttling", b.Warmup))

	fr.Steps = append(fr.Steps, "Set the Script Properties listed in INSTRUCTIONS.md.")
	fr.Steps = append(fr.Steps, "Deploy > New deployment > Web app, access: Anyone.")
	if b.Gmail {
		fr.Steps = append(fr.Steps, "Run setupAllTriggers() once to enable Gmail reply detection.")
	}
	fr.Steps = append(fr.Steps, "Run setupNewsletterSchedule() to schedule sends.")
	fr.Steps = append(fr.Steps, "Run testWebhook(), then showMySpreadsheet() to check the result.")
	return fr
}

func onOff(label string, on bool) string {
	if on {
		return label + ": on"
	}
	return label + ": off"
}

var funcs = template.FuncMap{
	"comment": escape.Comment,
	"inc":     func(i int) int { return i + 1 },
}

const headerTemplate = `/**
 * Newsletter automation for {{ comment .Brand }}
 * Generated by nlkit.
{{- if .GeneratedAt }}
 * Generated at: {{ .GeneratedAt }}
{{- end }}
 *
 * Email provider: {{ comment .Provider }}
 * Template: {{ comment .Template }}
 * Storage: {{ .Storage }}
{{- range .Features }}
 * {{ . }}
{{- end }}
 */
`

const footerTemplate = `// ===== NEXT STEPS =====
{{- range $i, $step := .Steps }}
// {{ inc $i }}. {{ $step }}
{{- end }}
`

var (
	headerTmpl = template.Must(template.New("header").Funcs(funcs).Parse(headerTemplate))
	footerTmpl = template.Must(template.New("footer").Funcs(funcs).Parse(footerTemplate))
)
