// Package scan orchestrates a full scan: the walker streams work items
// into a fixed-size worker pool, each worker runs the detector over one
// file, and findings drain into a mutex-protected sink. Output order is
// determined solely by the final sort, never by completion order.
package scan

import (
	"context"
	"errors"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/skew202/antislop/pkg/config"
	"github.com/skew202/antislop/pkg/detector"
	"github.com/skew202/antislop/pkg/grammar"
	"github.com/skew202/antislop/pkg/lang"
	"github.com/skew202/antislop/pkg/pattern"
	"github.com/skew202/antislop/pkg/walker"
)

// ErrCancelled is returned when the scan is interrupted. The Result
// alongside it contains every finding completed before the interrupt;
// in-flight files are discarded whole, never published partially.
var ErrCancelled = errors.New("scan cancelled")

// Options configure a scan run.
type Options struct {
	// Workers sizes the pool; zero means available parallelism.
	Workers int
	// FileTimeout is the per-file detection budget; zero means
	// detector.DefaultFileTimeout.
	FileTimeout time.Duration
	// NoNaming disables the filename convention check.
	NoNaming bool
	// FollowSymlinks is passed through to the walker.
	FollowSymlinks bool
	Logger         hclog.Logger
}

// Scanner runs scans. The registry and grammar set are shared read-only
// across all workers; a Scanner may be reused for sequential scans.
type Scanner struct {
	cfg      *config.Config
	rules    *pattern.Registry
	grammars *grammar.Registry
	opts     Options
	log      hclog.Logger
}

// New creates a scanner over an immutable configuration and compiled
// ruleset.
func New(cfg *config.Config, rules *pattern.Registry, grammars *grammar.Registry, opts Options) *Scanner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.FileTimeout <= 0 {
		opts.FileTimeout = detector.DefaultFileTimeout
	}
	log := opts.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Scanner{cfg: cfg, rules: rules, grammars: grammars, opts: opts, log: log}
}

// Run scans the given roots. On interruption it stops accepting work,
// drains the pool, and returns the completed findings with
// ErrCancelled.
func (s *Scanner) Run(ctx context.Context, roots []string) (*Result, error) {
	if len(roots) == 0 {
		roots = []string{"."}
	}

	w := walker.New(walker.Options{
		Extensions:     s.cfg.FileExtensions,
		Exclude:        s.cfg.Exclude,
		MaxFileSize:    s.cfg.MaxFileSize(),
		FollowSymlinks: s.opts.FollowSymlinks,
	})

	det := detector.New(s.rules, s.grammars)

	// Only workers read file contents, so at most Workers files are
	// resident at once; the channel holds up to 2*Workers pending items.
	items := make(chan walker.Item, s.opts.Workers*2)

	result := &Result{}
	var mu sync.Mutex

	walkDone := make(chan error, 1)
	go func() {
		walkDone <- w.Walk(ctx, roots, items)
	}()

	var g errgroup.Group
	for range s.opts.Workers {
		g.Go(func() error {
			for item := range items {
				if ctx.Err() != nil {
					// Keep draining so the walker can finish; work is
					// dropped, not processed.
					continue
				}
				s.scanOne(ctx, det, item, result, &mu)
			}
			return nil
		})
	}
	_ = g.Wait()
	walkErr := <-walkDone

	if !s.opts.NoNaming {
		s.checkNaming(result)
	}

	result.FilesSkipped = w.Stats.Oversize
	result.Findings = s.suppress(result.Findings)
	result.finalize()

	if ctx.Err() != nil {
		return result, ErrCancelled
	}
	if walkErr != nil && !errors.Is(walkErr, context.Canceled) {
		return result, walkErr
	}
	return result, nil
}

// scanOne processes a single work item. Per-file failures are counted
// and logged, never fatal.
func (s *Scanner) scanOne(ctx context.Context, det *detector.Detector, item walker.Item, result *Result, mu *sync.Mutex) {
	content, err := os.ReadFile(item.Path)
	if err != nil {
		s.log.Warn("skipping unreadable file", "path", item.Path, "error", err)
		mu.Lock()
		result.FilesErrored++
		mu.Unlock()
		return
	}

	// Shebang classification for extensionless files needs content.
	language := item.Language
	if language == lang.Unknown {
		language = lang.Detect(item.Path, content)
	}

	fileCtx, cancel := context.WithTimeout(ctx, s.opts.FileTimeout)
	findings, err := det.Detect(fileCtx, item.Path, content, language)
	cancel()

	mu.Lock()
	defer mu.Unlock()
	result.FilesScanned++
	result.scannedPaths = append(result.scannedPaths, item.Path)

	switch {
	case errors.Is(err, detector.ErrDetectorTimeout):
		s.log.Warn("detector timeout, file partially scanned", "path", item.Path)
		result.FilesTimedOut++
	case err != nil:
		s.log.Warn("detection failed", "path", item.Path, "error", err)
		result.FilesErrored++
	default:
		result.Findings = append(result.Findings, findings...)
	}
}

// suppress drops findings matching the configured suppression rules.
func (s *Scanner) suppress(findings []detector.Finding) []detector.Finding {
	if len(s.cfg.Suppress) == 0 {
		return findings
	}

	out := findings[:0]
	for _, f := range findings {
		if !s.suppressed(&f) {
			out = append(out, f)
		}
	}
	return out
}

func (s *Scanner) suppressed(f *detector.Finding) bool {
	for _, rule := range s.cfg.Suppress {
		ok, err := doublestar.Match(rule.Path, f.File)
		if err != nil || !ok {
			continue
		}
		if len(rule.IDs) == 0 {
			return true
		}
		for _, id := range rule.IDs {
			if id == f.PatternID {
				return true
			}
		}
	}
	return false
}
