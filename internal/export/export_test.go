package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/newsletter-kit/internal/bundle"
	"github.com/ziadkadry99/newsletter-kit/internal/config"
)

func generate(t *testing.T) *bundle.Bundle {
	t.Helper()
	b, err := bundle.Generate(config.Brand{
		BrandName:     "Acme <Tools>",
		EmailProvider: config.ProviderBrevo,
		SenderEmail:   "news@acme.test",
		Template:      config.TemplateNewsletter,
		Frequency:     "weekly",
	})
	require.NoError(t, err)
	return b
}

type recorder struct {
	total   int
	updates []string
	done    bool
}

func (r *recorder) Start(total int)              { r.total = total }
func (r *recorder) Update(_ int, message string) { r.updates = append(r.updates, message) }
func (r *recorder) Finish()                      { r.done = true }

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	b := generate(t)
	rep := &recorder{}

	written, err := Write(b, Options{Dir: dir, HTML: true, Combined: true}, rep)
	require.NoError(t, err)
	require.Len(t, written, 6)

	assert.Equal(t, 6, rep.total)
	assert.Equal(t, []string{"Code.gs", "index.html", "thank-you.html", "INSTRUCTIONS.md", FileInstructionsHTML, FileCombined}, rep.updates)
	assert.True(t, rep.done)

	for _, f := range b.Files {
		data, err := os.ReadFile(filepath.Join(dir, f.Name))
		require.NoError(t, err)
		assert.Equal(t, f.Content, string(data))
	}

	page, err := os.ReadFile(filepath.Join(dir, FileInstructionsHTML))
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>Acme &lt;Tools&gt; - Setup Instructions</title>")
	assert.Contains(t, string(page), "<table>")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".nlkit-tmp-"), e.Name())
	}
}

func TestInstructionsPageEscapesBrandValues(t *testing.T) {
	b, err := bundle.Generate(config.Brand{
		BrandName:     "Acme <script>alert(1)</script>",
		EmailProvider: config.ProviderResend,
		SenderEmail:   "news@acme.test",
		Template:      config.TemplateMinimal,
		Frequency:     "weekly <img src=x onerror=alert(2)>",
		GeminiKey:     "<b>key</b>",
	})
	require.NoError(t, err)

	page, err := InstructionsPage(b.Brand.BrandName, b.Instructions)
	require.NoError(t, err)

	assert.NotContains(t, page, "<script>alert(1)</script>")
	assert.NotContains(t, page, "<img src=x onerror=alert(2)>")
	assert.NotContains(t, page, "<b>key</b>")
	assert.Contains(t, page, "<title>Acme &lt;script&gt;alert(1)&lt;/script&gt; - Setup Instructions</title>")
	assert.Contains(t, page, "<table>")
}

func TestWriteOnly(t *testing.T) {
	dir := t.TempDir()
	written, err := Write(generate(t), Options{Dir: dir, Only: []string{"*.html"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "index.html"), filepath.Join(dir, "thank-you.html")}, written)

	_, err = os.Stat(filepath.Join(dir, "Code.gs"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteRejectsBadPatterns(t *testing.T) {
	_, err := Write(generate(t), Options{Dir: t.TempDir(), Only: []string{"[unclosed"}}, nil)
	require.Error(t, err)

	_, err = Write(generate(t), Options{Dir: t.TempDir(), Only: []string{"*.py"}}, nil)
	require.Error(t, err)
}

func TestSelected(t *testing.T) {
	assert.True(t, Selected("Code.gs", nil))
	assert.True(t, Selected("Code.gs", []string{"*.gs"}))
	assert.True(t, Selected("INSTRUCTIONS.md", []string{"*.gs", "INSTRUCTIONS.*"}))
	assert.False(t, Selected("index.html", []string{"*.gs"}))
}

func TestAtomicWriteReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "file.txt")
	require.NoError(t, AtomicWrite(path, []byte("one")))
	require.NoError(t, AtomicWrite(path, []byte("two")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}
