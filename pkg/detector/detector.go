// Package detector finds slop in a single file. It runs one of two
// strategies: syntax-aware detection over a tree-sitter parse (comment
// text matching plus structural stub analysis), or a regex fallback
// driven by a per-language comment/string state machine.
//
// Detection within one file is sequential; a Detector is safe to share
// across goroutines because all of its state is read-only after
// construction.
package detector

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/skew202/antislop/pkg/grammar"
	"github.com/skew202/antislop/pkg/lang"
	"github.com/skew202/antislop/pkg/pattern"
)

// ErrDetectorTimeout is returned when detection of a single file exceeds
// its wall-time budget. The file yields no findings and the scan
// continues.
var ErrDetectorTimeout = errors.New("detector timeout")

// DefaultFileTimeout bounds detection of a single file.
const DefaultFileTimeout = 10 * time.Second

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Finding is one located occurrence of a pattern match. Line and column
// are 1-based; columns count Unicode code points. End positions are
// inclusive of the last code point of the match.
type Finding struct {
	File      string           `json:"path"`
	Line      int              `json:"line"`
	Column    int              `json:"column"`
	EndLine   int              `json:"end_line"`
	EndColumn int              `json:"end_column"`
	MatchText string           `json:"matched_text"`
	PatternID string           `json:"pattern_id"`
	Category  pattern.Category `json:"category"`
	Severity  pattern.Severity `json:"severity"`
	Message   string           `json:"message"`

	// Byte span within the scanned file, used for same-span dedup and
	// containment checks. Not serialized.
	startByte int
	endByte   int
	// order breaks dedup ties: registry rules use their insertion index,
	// structural rules sort after all of them.
	order int
}

// Span returns the finding's byte span within the scanned file.
func (f *Finding) Span() (start, end int) {
	return f.startByte, f.endByte
}

// contains reports whether the finding's span strictly contains other's.
func (f *Finding) contains(other *Finding) bool {
	return f.startByte <= other.startByte && other.endByte <= f.endByte &&
		(f.startByte != other.startByte || f.endByte != other.endByte)
}

// Detector runs slop detection over single files. The pattern registry
// is shared read-only; grammar lookups go through the registry's
// capability set.
type Detector struct {
	rules    *pattern.Registry
	grammars *grammar.Registry
}

// New creates a detector over the given compiled rules and grammars.
func New(rules *pattern.Registry, grammars *grammar.Registry) *Detector {
	return &Detector{rules: rules, grammars: grammars}
}

// Detect scans file content and returns its findings. The strategy is
// chosen by grammar capability: parse-capable languages get AST
// detection with the regex fallback reserved for outright parse
// rejection; all other languages go straight to the fallback.
//
// The context's deadline is the per-file budget; on breach Detect
// returns ErrDetectorTimeout and no findings.
func (d *Detector) Detect(ctx context.Context, file string, content []byte, language lang.Language) ([]Finding, error) {
	// A BOM is not part of any line; strip it before position accounting.
	content = bytes.TrimPrefix(content, utf8BOM)

	idx := newLineIndex(content)

	var (
		findings []Finding
		err      error
	)
	if d.grammars.Has(language) {
		findings, err = d.detectAST(ctx, content, idx, language)
		if err != nil && !errors.Is(err, errParseRejected) {
			return nil, timeoutOr(ctx, err)
		}
		if errors.Is(err, errParseRejected) {
			findings, err = d.detectFallback(ctx, content, idx, language)
		}
	} else {
		findings, err = d.detectFallback(ctx, content, idx, language)
	}
	if err != nil {
		return nil, timeoutOr(ctx, err)
	}

	findings = dedupeSpans(findings)
	for i := range findings {
		findings[i].File = file
	}
	return findings, nil
}

// errParseRejected signals that the grammar rejected the input outright
// (no tree at all). Recoverable parse errors keep the best-effort tree.
var errParseRejected = errors.New("parse rejected")

// timeoutOr maps a deadline breach to ErrDetectorTimeout, otherwise
// passes the error through.
func timeoutOr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ErrDetectorTimeout
	}
	return err
}

// checkDeadline is called inside detection loops; it is the only
// cancellation point within a file.
func checkDeadline(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ErrDetectorTimeout
	default:
		return nil
	}
}

// newFinding builds a finding for the byte range [start, end), filling
// positions from the line index. The file path is set by Detect.
func newFinding(idx *lineIndex, start, end int, id string, cat pattern.Category, sev pattern.Severity, msg string, order int) Finding {
	line, col, endLine, endCol := idx.span(start, end)
	return Finding{
		Line:      line,
		Column:    col,
		EndLine:   endLine,
		EndColumn: endCol,
		MatchText: string(idx.content[start:end]),
		PatternID: id,
		Category:  cat,
		Severity:  sev,
		Message:   msg,
		startByte: start,
		endByte:   end,
		order:     order,
	}
}
