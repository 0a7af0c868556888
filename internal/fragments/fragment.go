// Package fragments renders the blocks of the generated Apps Script file.
//
// Every generator is a pure function of config.Brand. When the feature a
// generator covers is switched off it returns a stub that defines the same
// public functions, so the rest of the script can call them without
// checking flags.
package fragments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/ziadkadry99/newsletter-kit/internal/config"
	"github.com/ziadkadry99/newsletter-kit/internal/escape"
)

// Fragment is one generated block of Code.gs.
type Fragment struct {
	Name string
	// Live is false when Text is a disabled-feature stub.
	Live bool
	Text string
	// Provides lists the functions and constants other fragments may call.
	Provides []string
	// Requires lists symbols this fragment uses that another fragment
	// defines.
	Requires []string
}

// Storage accessors. Exactly one of them is defined in a generated script.
const (
	AccessorAutoProvision = "getOrCreateSpreadsheet"
	AccessorSupplied      = "getSpreadsheet"
)

// StorageAccessor returns the spreadsheet accessor every storage-touching
// fragment calls for b.
func StorageAccessor(b config.Brand) string {
	if b.AutoProvision() {
		return AccessorAutoProvision
	}
	return AccessorSupplied
}

// view is the data handed to every fragment template. It is derived once
// per generator call and never written to afterwards.
type view struct {
	config.Brand
	AutoProvision bool
	Storage       string
	SheetRef      string
	Provider      string
	TemplateKey   string
	AI            bool
	Endpoint      string
	Priority      []config.EmailProvider
	APIKeys       []config.ProviderInfo
	Prompt        promptParts
	Wrappers      []wrapper
}

func newView(b config.Brand) view {
	return view{
		Brand:         b,
		AutoProvision: b.AutoProvision(),
		Storage:       StorageAccessor(b),
		SheetRef:      strings.TrimSpace(b.SheetID),
		Provider:      string(b.EmailProvider),
		TemplateKey:   string(b.Template),
		AI:            b.HasAI(),
		Endpoint:      GeminiEndpoint,
		Priority:      config.ProviderPriority,
		APIKeys:       config.ProviderAPIKeys(),
		Prompt:        prompt,
		Wrappers:      wrappers,
	}
}

var funcs = template.FuncMap{
	// lit renders s as a backtick literal.
	"lit": func(s string) string {
		return "`" + escape.EmbeddedLiteral(s) + "`"
	},
	// js renders s as a double-quoted string literal.
	"js": func(s string) string {
		return mustJSON(s)
	},
	"json": func(v any) string {
		return mustJSON(v)
	},
}

// mustJSON encodes v without HTML escaping so markup stays readable in the
// generated source.
func mustJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		panic(fmt.Sprintf("fragments: encoding %T: %v", v, err))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func parse(name, src string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).Parse(src))
}

// render executes t. Templates are parsed at init and only read fields of
// view, so a failure here is a programming error.
func render(t *template.Template, b config.Brand) string {
	var buf strings.Builder
	if err := t.Execute(&buf, newView(b)); err != nil {
		panic(fmt.Sprintf("fragments: rendering %s: %v", t.Name(), err))
	}
	return buf.String()
}
