// Package export writes a generated bundle to disk.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ziadkadry99/newsletter-kit/internal/bundle"
	"github.com/ziadkadry99/newsletter-kit/internal/progress"
)

// Extra files Write can add next to the bundle.
const (
	FileInstructionsHTML = "INSTRUCTIONS.html"
	FileCombined         = "bundle.txt"
)

// Options selects what Write produces.
type Options struct {
	Dir string
	// Only restricts output to file names matching any of these doublestar
	// patterns. Empty means every file.
	Only []string
	// HTML also renders INSTRUCTIONS.md to INSTRUCTIONS.html.
	HTML bool
	// Combined also writes every file into bundle.txt.
	Combined bool
}

// Write stores the selected files of b under opts.Dir and returns the paths
// written, in bundle order. Each file is replaced atomically.
func Write(b *bundle.Bundle, opts Options, rep progress.Reporter) ([]string, error) {
	for _, pattern := range opts.Only {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid --only pattern %q", pattern)
		}
	}
	if rep == nil {
		rep = progress.Discard{}
	}

	files, err := outputs(b, opts)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no bundle files match %v", opts.Only)
	}

	rep.Start(len(files))
	defer rep.Finish()

	written := make([]string, 0, len(files))
	for i, f := range files {
		path := filepath.Join(opts.Dir, f.Name)
		if err := AtomicWrite(path, []byte(f.Content)); err != nil {
			return written, err
		}
		written = append(written, path)
		rep.Update(i+1, f.Name)
	}
	return written, nil
}

func outputs(b *bundle.Bundle, opts Options) ([]bundle.File, error) {
	var files []bundle.File
	for _, f := range b.Files {
		if Selected(f.Name, opts.Only) {
			files = append(files, f)
		}
	}
	if opts.HTML && Selected(FileInstructionsHTML, opts.Only) {
		page, err := InstructionsPage(b.Brand.BrandName, b.Instructions)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", FileInstructionsHTML, err)
		}
		files = append(files, bundle.File{Name: FileInstructionsHTML, Content: page})
	}
	if opts.Combined {
		files = append(files, bundle.File{Name: FileCombined, Content: b.Combined()})
	}
	return files, nil
}

// Selected reports whether name matches any pattern. No patterns selects
// everything.
func Selected(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}

// AtomicWrite writes content to path through a temp file and rename.
func AtomicWrite(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".nlkit-tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(content); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing content: %w", err)
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		tmpFile.Close()
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("moving temp file to %s: %w", path, err)
	}
	return nil
}
