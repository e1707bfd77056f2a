package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/skew202/antislop/pkg/config"
	"github.com/skew202/antislop/pkg/detector"
	"github.com/skew202/antislop/pkg/grammar"
	"github.com/skew202/antislop/pkg/pattern"
)

var testGrammars = grammar.NewRegistry()

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newScanner(t *testing.T, cfg *config.Config, opts Options) *Scanner {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	rules, err := cfg.CompileRegistry()
	if err != nil {
		t.Fatalf("compile registry: %v", err)
	}
	return New(cfg, rules, testGrammars, opts)
}

func runScan(t *testing.T, s *Scanner, roots []string) *Result {
	t.Helper()
	result, err := s.Run(context.Background(), roots)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return result
}

func TestScanPythonScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.py"), "# TODO: later\npass\n")

	result := runScan(t, newScanner(t, nil, Options{NoNaming: true}), []string{dir})

	if result.TotalFindings != 2 {
		t.Fatalf("expected 2 findings, got %d: %+v", result.TotalFindings, result.Findings)
	}
	if result.Score != 55 {
		t.Errorf("score = %d, want 55 (medium 5 + critical 50)", result.Score)
	}
	if result.FilesScanned != 1 || result.FilesWithFindings != 1 {
		t.Errorf("files: scanned=%d with=%d, want 1/1", result.FilesScanned, result.FilesWithFindings)
	}
}

func TestScanRustScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.rs"), "fn x() { todo!() }\n")

	result := runScan(t, newScanner(t, nil, Options{NoNaming: true}), []string{dir})

	if result.TotalFindings != 1 || result.Score != 50 {
		t.Fatalf("got %d findings, score %d; want 1 finding, score 50", result.TotalFindings, result.Score)
	}
}

func TestScanJavaScriptScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "c.js"), "function f(){try{g()}catch(e){}}\n")

	result := runScan(t, newScanner(t, nil, Options{NoNaming: true}), []string{dir})

	if result.TotalFindings != 1 || result.Score != 15 {
		t.Fatalf("got %d findings, score %d; want 1 finding, score 15", result.TotalFindings, result.Score)
	}
}

func TestScanHonorsGitignore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".gitignore"), "build/\n")
	writeFile(t, filepath.Join(dir, "build", "gen.py"), "# TODO: generated\n")
	writeFile(t, filepath.Join(dir, "ok.py"), "x = 1\n")

	result := runScan(t, newScanner(t, nil, Options{NoNaming: true}), []string{dir})

	if result.TotalFindings != 0 {
		t.Fatalf("findings from ignored tree: %+v", result.Findings)
	}
	if result.FilesScanned != 1 {
		t.Errorf("FilesScanned = %d, want 1", result.FilesScanned)
	}
}

func TestScanStableOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "z.py"), "# TODO: z\n")
	writeFile(t, filepath.Join(dir, "a.py"), "# TODO: a2\n# TODO: a1\n")

	s := newScanner(t, nil, Options{NoNaming: true, Workers: 4})
	result := runScan(t, s, []string{dir})

	if result.TotalFindings != 3 {
		t.Fatalf("expected 3 findings, got %d", result.TotalFindings)
	}

	var prevFile string
	prevLine := 0
	for _, f := range result.Findings {
		if f.File < prevFile {
			t.Fatalf("file order violated: %q after %q", f.File, prevFile)
		}
		if f.File == prevFile && f.Line < prevLine {
			t.Fatalf("line order violated in %s", f.File)
		}
		if f.File != prevFile {
			prevLine = 0
		}
		prevFile, prevLine = f.File, f.Line
	}
}

func TestScanDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.py"), "# TODO: a\npass\n")
	writeFile(t, filepath.Join(dir, "b.go"), "package b\n\nfunc f() {}\n")
	writeFile(t, filepath.Join(dir, "c.kt"), "// FIXME: kotlin\n")

	s := newScanner(t, nil, Options{NoNaming: true, Workers: 8})
	first := runScan(t, s, []string{dir})
	second := runScan(t, s, []string{dir})

	if first.Score != second.Score || first.TotalFindings != second.TotalFindings {
		t.Fatalf("scan not deterministic: %d/%d vs %d/%d",
			first.TotalFindings, first.Score, second.TotalFindings, second.Score)
	}
	for i := range first.Findings {
		if first.Findings[i] != second.Findings[i] {
			t.Errorf("finding %d differs between runs", i)
		}
	}
}

func TestScanCountInvariants(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.py"), "# TODO: x\n")
	writeFile(t, filepath.Join(dir, "clean.py"), "x = 1\n")
	writeFile(t, filepath.Join(dir, "empty.py"), "")

	result := runScan(t, newScanner(t, nil, Options{NoNaming: true}), []string{dir})

	if result.FilesScanned != 3 {
		t.Errorf("FilesScanned = %d, want 3 (empty files count)", result.FilesScanned)
	}
	if result.FilesWithFindings > result.FilesScanned {
		t.Error("files_with_findings must not exceed files_scanned")
	}

	bySevTotal := 0
	for _, n := range result.BySeverity {
		bySevTotal += n
	}
	if bySevTotal != result.TotalFindings {
		t.Errorf("severity counts sum to %d, want %d", bySevTotal, result.TotalFindings)
	}

	wantScore := 0
	for _, f := range result.Findings {
		wantScore += f.Severity.Weight()
	}
	if result.Score != wantScore {
		t.Errorf("score = %d, want %d", result.Score, wantScore)
	}
}

func TestScanSuppression(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.py"), "# TODO: x\npass\n")

	cfg := config.Default()
	cfg.Suppress = []config.SuppressRule{
		{Path: "**/a.py", IDs: []string{"placeholder-todo"}},
	}

	result := runScan(t, newScanner(t, cfg, Options{NoNaming: true}), []string{dir})

	for _, f := range result.Findings {
		if f.PatternID == "placeholder-todo" {
			t.Fatalf("suppressed finding survived: %+v", f)
		}
	}
	if result.TotalFindings != 1 {
		t.Errorf("expected only the pass stub, got %d findings", result.TotalFindings)
	}
}

func TestScanSuppressWholeFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "legacy.py"), "# TODO: x\npass\n")

	cfg := config.Default()
	cfg.Suppress = []config.SuppressRule{{Path: "**/legacy.py"}}

	result := runScan(t, newScanner(t, cfg, Options{NoNaming: true}), []string{dir})
	if result.TotalFindings != 0 {
		t.Fatalf("expected all findings suppressed, got %d", result.TotalFindings)
	}
}

func TestScanNamingConvention(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "utils_v2.py"), "x = 1\n")

	result := runScan(t, newScanner(t, nil, Options{}), []string{dir})

	var found *detector.Finding
	for i := range result.Findings {
		if result.Findings[i].Category == pattern.CatNaming {
			found = &result.Findings[i]
		}
	}
	if found == nil {
		t.Fatal("expected a naming_convention finding for utils_v2.py")
	}
	if found.MatchText != "utils_v2.py" {
		t.Errorf("match text %q", found.MatchText)
	}
}

func TestScanUnreadableFileIsNonFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ok.py"), "# TODO: x\n")
	bad := filepath.Join(dir, "bad.py")
	writeFile(t, bad, "pass\n")
	if err := os.Chmod(bad, 0o000); err != nil {
		t.Skipf("chmod unavailable: %v", err)
	}
	if os.Geteuid() == 0 {
		t.Skip("running as root, permissions are not enforced")
	}
	t.Cleanup(func() { _ = os.Chmod(bad, 0o644) })

	result := runScan(t, newScanner(t, nil, Options{NoNaming: true}), []string{dir})

	if result.FilesErrored != 1 {
		t.Errorf("FilesErrored = %d, want 1", result.FilesErrored)
	}
	if result.TotalFindings != 1 {
		t.Errorf("the readable file should still be scanned, got %d findings", result.TotalFindings)
	}
}

func TestScanCancellation(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 20; i++ {
		writeFile(t, filepath.Join(dir, "f"+string(rune('a'+i))+".py"), "# TODO: x\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newScanner(t, nil, Options{NoNaming: true})
	result, err := s.Run(ctx, []string{dir})
	if err != ErrCancelled {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if result == nil {
		t.Fatal("cancelled scans still return completed findings")
	}
}

func TestScanOversizeSkippedSilently(t *testing.T) {
	dir := t.TempDir()
	big := make([]byte, 8192)
	copy(big, []byte("# TODO: big\n"))
	writeFile(t, filepath.Join(dir, "big.py"), string(big))

	cfg := config.Default()
	cfg.MaxFileSizeKB = 1

	result := runScan(t, newScanner(t, cfg, Options{NoNaming: true}), []string{dir})

	if result.TotalFindings != 0 {
		t.Errorf("oversize file should not be scanned, got %d findings", result.TotalFindings)
	}
	if result.FilesSkipped != 1 {
		t.Errorf("FilesSkipped = %d, want 1", result.FilesSkipped)
	}
}
