package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tempRoot(t *testing.T) (*FS, string) {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs, dir
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRead(t *testing.T) {
	s, root := tempRoot(t)
	writeFile(t, root, "oa/oc.md", "# Hello\n")
	got, err := s.Read("oa/oc.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "# Hello\n" {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestReadMissing(t *testing.T) {
	s, _ := tempRoot(t)
	if _, err := s.Read("nope.md"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestPathTraversal(t *testing.T) {
	s, _ := tempRoot(t)
	for _, p := range []string{"../escape.md", "a/../../escape.md"} {
		if _, err := s.Read(p); err == nil || !strings.Contains(err.Error(), "escapes") {
			t.Errorf("Read(%q) err = %v, want traversal error", p, err)
		}
	}
	if _, err := s.Read("/etc/passwd"); err == nil {
		t.Error("absolute path must be rejected")
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	s, root := tempRoot(t)
	writeFile(t, root, "z.md", "z")
	writeFile(t, root, "a/b.md", "b")
	writeFile(t, root, "categories.yaml", "- idx: A\n")
	writeFile(t, root, "notes.txt", "ignored")
	writeFile(t, root, ".git/HEAD.md", "ignored")
	writeFile(t, root, ".hidden.md", "ignored")

	files, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
		if len(f.Checksum) != 64 {
			t.Errorf("checksum of %s = %q", f.Path, f.Checksum)
		}
	}
	want := "a/b.md,categories.yaml,z.md"
	if got := strings.Join(paths, ","); got != want {
		t.Errorf("paths = %s, want %s", got, want)
	}
}

func TestNewFSRejectsFile(t *testing.T) {
	_, root := tempRoot(t)
	writeFile(t, root, "f.md", "x")
	if _, err := NewFS(filepath.Join(root, "f.md")); err == nil {
		t.Fatal("expected error for non-directory root")
	}
}
