// Package golden compares generated text against files under testdata.
// Run tests with -update to rewrite them.
package golden

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var Update = flag.Bool("update", false, "update golden files")

// Assert compares got with testdata/<name>.golden in dir. The file is
// written instead when -update is set. A missing golden file fails the
// test.
func Assert(t testing.TB, dir, name, got string) {
	t.Helper()
	path, ok := goldenPath(t, dir, name)
	if !ok {
		return
	}

	if *Update {
		write(t, path, got)
		return
	}
	want, err := os.ReadFile(path) //nolint:gosec // testdata path controlled by test
	if os.IsNotExist(err) {
		t.Fatalf("golden file %s is missing (run with -update to create it)", path)
		return
	}
	if err != nil {
		t.Fatalf("read golden %s: %v", path, err)
		return
	}
	if string(want) != got {
		t.Errorf("%s differs from golden file %s (rerun with -update if the change is intended)\n%s",
			name, path, firstDiff(string(want), got))
	}
}

func goldenPath(t testing.TB, dir, name string) (string, bool) {
	t.Helper()
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		t.Fatalf("invalid golden name %q", name)
		return "", false
	}
	return filepath.Join(dir, name+".golden"), true
}

func write(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir testdata: %v", err)
		return
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write golden %s: %v", path, err)
	}
}

// firstDiff describes the first line where want and got disagree.
func firstDiff(want, got string) string {
	w := strings.Split(want, "\n")
	g := strings.Split(got, "\n")
	for i := 0; i < len(w) || i < len(g); i++ {
		var wl, gl string
		if i < len(w) {
			wl = w[i]
		}
		if i < len(g) {
			gl = g[i]
		}
		if wl != gl {
			return fmt.Sprintf("line %d:\n  want: %s\n  got:  %s", i+1, wl, gl)
		}
	}
	return "(trailing content differs)"
}
