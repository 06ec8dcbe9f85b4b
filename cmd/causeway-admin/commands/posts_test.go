package commands

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadBody(t *testing.T) {
	if got, err := readBody("inline text", ""); err != nil || got != "inline text" {
		t.Errorf("literal body: got %q, err %v", got, err)
	}

	// An inline body wins over a file.
	if got, _ := readBody("inline", "/nonexistent"); got != "inline" {
		t.Errorf("literal should win, got %q", got)
	}

	path := filepath.Join(t.TempDir(), "body.md")
	if err := os.WriteFile(path, []byte("# From a file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got, err := readBody("", path); err != nil || got != "# From a file\n" {
		t.Errorf("file body: got %q, err %v", got, err)
	}

	if _, err := readBody("", ""); err == nil {
		t.Error("neither source should error")
	}
	if _, err := readBody("", filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Error("missing file should error")
	}
}
