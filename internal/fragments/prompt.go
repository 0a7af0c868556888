package fragments

import (
	"strings"

	"github.com/ziadkadry99/newsletter-kit/internal/config"
)

type promptParts struct {
	Intro  string
	Bio    string
	Voice  string
	Sample string
	Format string
}

// prompt holds the wording shared by the generated AI block and
// nlkit preview.
var prompt = promptParts{
	Intro:  "Write a short, engaging newsletter (300-500 words) for ",
	Bio:    "About the brand: ",
	Voice:  "Voice and tone: ",
	Sample: "Example of past content:\n",
	Format: "Format the newsletter as simple HTML using only <h2>, <p>, <ul>, <li>, <strong> and <a> tags. Do not include a subject line, greeting placeholder or unsubscribe footer.",
}

// Prompt returns the newsletter prompt the generated script sends to
// Gemini for b. Empty optional fields are left out.
func Prompt(b config.Brand) string {
	parts := []string{prompt.Intro + b.BrandName + "."}
	if b.BrandBio != "" {
		parts = append(parts, prompt.Bio+b.BrandBio)
	}
	if b.BrandVoice != "" {
		parts = append(parts, prompt.Voice+b.BrandVoice)
	}
	if b.SampleContent != "" {
		parts = append(parts, prompt.Sample+b.SampleContent)
	}
	parts = append(parts, prompt.Format)
	return strings.Join(parts, "\n\n")
}
