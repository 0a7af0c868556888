package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and saves the result
// to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to nlkit! Let's set up your newsletter.")
	fmt.Println()

	cfg := DefaultConfig()
	b := &cfg.Brand

	var err error
	if b.BrandName, err = prompt("Brand name", "", required); err != nil {
		return nil, fmt.Errorf("brand name: %w", err)
	}
	if b.BrandBio, err = prompt("Short bio (optional)", "", nil); err != nil {
		return nil, fmt.Errorf("brand bio: %w", err)
	}
	if b.BrandVoice, err = prompt("Brand voice, e.g. friendly, witty (optional)", "", nil); err != nil {
		return nil, fmt.Errorf("brand voice: %w", err)
	}

	providers := make([]string, len(ProviderPriority))
	for i, p := range ProviderPriority {
		providers[i] = string(p)
	}
	providerPrompt := promptui.Select{
		Label: "Primary email provider",
		Items: providers,
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	b.EmailProvider = EmailProvider(providerStr)

	if b.SenderEmail, err = prompt("Sender email address", "", func(s string) error {
		if !ValidEmail(s) {
			return errors.New("not an email address")
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("sender email: %w", err)
	}

	templatePrompt := promptui.Select{
		Label: "Newsletter template",
		Items: []string{
			"newsletter: gradient header, classic layout",
			"story:      serif letter on a warm background",
			"minimal:    plain text column, no header",
		},
	}
	templateIdx, _, err := templatePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("template selection: %w", err)
	}
	b.Template = []Template{TemplateNewsletter, TemplateStory, TemplateMinimal}[templateIdx]

	freqPrompt := promptui.Select{
		Label:     "Send frequency",
		Items:     []string{"daily", "weekly", "biweekly", "monthly"},
		CursorPos: 1,
	}
	if _, b.Frequency, err = freqPrompt.Run(); err != nil {
		return nil, fmt.Errorf("frequency selection: %w", err)
	}

	if b.Verification, err = confirm("Require subscribers to reply before activation"); err != nil {
		return nil, err
	}
	if b.Verification {
		if b.Gmail, err = confirm("Detect replies automatically in Gmail"); err != nil {
			return nil, err
		}
	}
	if b.Warmup, err = confirm("Throttle bulk sends (warm-up mode)"); err != nil {
		return nil, err
	}
	if b.SheetID, err = prompt("Existing Google Sheet ID (blank to auto-create)", "", nil); err != nil {
		return nil, fmt.Errorf("sheet id: %w", err)
	}
	if b.GeminiKey, err = prompt("Gemini API key for AI content (blank to skip)", "", nil); err != nil {
		return nil, fmt.Errorf("gemini key: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	fmt.Println("Run `nlkit generate` to build your Apps Script bundle.")
	return cfg, nil
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func prompt(label, def string, validate promptui.ValidateFunc) (string, error) {
	p := promptui.Prompt{
		Label:    label,
		Default:  def,
		Validate: validate,
	}
	s, err := p.Run()
	return strings.TrimSpace(s), err
}

// confirm asks a yes/no question. promptui reports "no" as ErrAbort.
func confirm(label string) (bool, error) {
	p := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := p.Run()
	if errors.Is(err, promptui.ErrAbort) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", strings.ToLower(label), err)
	}
	return true, nil
}
