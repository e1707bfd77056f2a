package walker

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/skew202/antislop/pkg/lang"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func collect(t *testing.T, w *Walker, roots []string) []Item {
	t.Helper()
	items := make(chan Item, 64)
	done := make(chan error, 1)
	go func() { done <- w.Walk(context.Background(), roots, items) }()

	var out []Item
	for item := range items {
		out = append(out, item)
	}
	if err := <-done; err != nil {
		t.Fatalf("Walk: %v", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rel < out[j].Rel })
	return out
}

func rels(items []Item) []string {
	var out []string
	for _, item := range items {
		out = append(out, item.Rel)
	}
	return out
}

func TestWalkFiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"), "package a\n")
	writeFile(t, filepath.Join(dir, "b.py"), "pass\n")
	writeFile(t, filepath.Join(dir, "c.txt"), "notes\n")

	w := New(Options{Extensions: []string{".go", ".py"}})
	items := collect(t, w, []string{dir})

	want := []string{"a.go", "b.py"}
	got := rels(items)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWalkHonorsGitignore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".gitignore"), "build/\n")
	writeFile(t, filepath.Join(dir, "main.py"), "pass\n")
	writeFile(t, filepath.Join(dir, "build", "gen.py"), "# TODO\n")

	w := New(Options{Extensions: []string{".py"}})
	items := collect(t, w, []string{dir})

	if got := rels(items); len(got) != 1 || got[0] != "main.py" {
		t.Fatalf("got %v, want [main.py]", got)
	}
}

func TestWalkHonorsNestedGitignore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sub", ".gitignore"), "*.gen.py\n")
	writeFile(t, filepath.Join(dir, "sub", "x.gen.py"), "pass\n")
	writeFile(t, filepath.Join(dir, "sub", "y.py"), "pass\n")
	writeFile(t, filepath.Join(dir, "x.gen.py"), "pass\n")

	w := New(Options{Extensions: []string{".py"}})
	items := collect(t, w, []string{dir})

	// The nested rule applies only under sub/.
	want := []string{"sub/y.py", "x.gen.py"}
	got := rels(items)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWalkExcludeGlobs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "keep.py"), "pass\n")
	writeFile(t, filepath.Join(dir, "vendor", "dep.py"), "pass\n")
	writeFile(t, filepath.Join(dir, "gen", "deep", "out.py"), "pass\n")

	w := New(Options{
		Extensions: []string{".py"},
		Exclude:    []string{"vendor/", "gen/**"},
	})
	items := collect(t, w, []string{dir})

	if got := rels(items); len(got) != 1 || got[0] != "keep.py" {
		t.Fatalf("got %v, want [keep.py]", got)
	}
}

func TestWalkMaxFileSize(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "small.py"), "pass\n")
	big := make([]byte, 4096)
	writeFile(t, filepath.Join(dir, "big.py"), string(big))

	w := New(Options{Extensions: []string{".py"}, MaxFileSize: 1024})
	items := collect(t, w, []string{dir})

	if got := rels(items); len(got) != 1 || got[0] != "small.py" {
		t.Fatalf("got %v, want [small.py]", got)
	}
	if w.Stats.Oversize != 1 {
		t.Errorf("Oversize = %d, want 1", w.Stats.Oversize)
	}
}

func TestWalkSingleFileRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "one.py")
	writeFile(t, path, "pass\n")

	w := New(Options{Extensions: []string{".py"}})
	items := collect(t, w, []string{path})

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Language != lang.Python {
		t.Errorf("language %q, want python", items[0].Language)
	}
}

func TestWalkHiddenFilesIncluded(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".hidden.py"), "pass\n")

	w := New(Options{Extensions: []string{".py"}})
	items := collect(t, w, []string{dir})

	if got := rels(items); len(got) != 1 || got[0] != ".hidden.py" {
		t.Fatalf("got %v, want [.hidden.py]", got)
	}
}

func TestWalkSymlinkLoop(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sub", "a.py"), "pass\n")
	if err := os.Symlink(dir, filepath.Join(dir, "sub", "loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	w := New(Options{Extensions: []string{".py"}, FollowSymlinks: true})
	items := collect(t, w, []string{dir})

	// The loop terminates and the file is seen exactly once.
	if got := rels(items); len(got) != 1 {
		t.Fatalf("got %v, want exactly one item", got)
	}
}

func TestWalkShebangScript(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "deploy"), "#!/usr/bin/env python3\n# TODO: roll back on failure\n")
	writeFile(t, filepath.Join(dir, "LICENSE"), "MIT License\n")

	w := New(Options{Extensions: []string{".py"}})
	items := collect(t, w, []string{dir})

	if got := rels(items); len(got) != 1 || got[0] != "deploy" {
		t.Fatalf("got %v, want [deploy]", got)
	}
	if items[0].Language != lang.Python {
		t.Errorf("language %q, want python", items[0].Language)
	}
}

func TestWalkWildcardExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "conf.weird"), "# TODO\n")

	w := New(Options{Extensions: []string{"*"}})
	items := collect(t, w, []string{dir})

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Language != lang.Unknown {
		t.Errorf("language %q, want unknown", items[0].Language)
	}
}
