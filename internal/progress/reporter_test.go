package progress

import (
	"bytes"
	"testing"
)

func TestCIReporter(t *testing.T) {
	t.Setenv("CI", "true")
	var buf bytes.Buffer
	r := NewReporter(&buf)
	if _, ok := r.(*CIReporter); !ok {
		t.Fatalf("expected *CIReporter, got %T", r)
	}

	r.Start(2)
	r.Update(1, "Code.gs")
	r.Update(2, "index.html")
	r.Finish()

	want := "Writing 2 bundle files\n[1/2] Code.gs\n[2/2] index.html\nBundle written\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestTerminalReporter(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	var buf bytes.Buffer
	r := NewReporter(&buf)
	if _, ok := r.(*TerminalReporter); !ok {
		t.Fatalf("expected *TerminalReporter, got %T", r)
	}
	r.Start(1)
	r.Update(1, "Code.gs")
	r.Finish()
}
