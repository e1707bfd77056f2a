package detector

import (
	"bytes"
	"context"

	"github.com/skew202/antislop/pkg/lang"
)

// The fallback strategy scans raw bytes with a small deterministic state
// machine tracking {Code, LineComment, BlockComment, String,
// StringEscape}. Transitions come from per-language delimiter tables;
// the same machine handles every language. Comment rules apply only to
// comment regions; textual stub rules apply anywhere. Matches inside
// string literals are a documented best-effort false-positive risk.

type fbState int

const (
	stCode fbState = iota
	stLineComment
	stBlockComment
	stString
	stStringEscape
)

// stringDelim describes one string literal form.
type stringDelim struct {
	open      string
	close     string
	escape    byte // 0 = no escape character
	multiline bool
}

// syntax is the per-language delimiter table for the fallback machine.
type syntax struct {
	lineMarkers []string
	blockOpen   string
	blockClose  string
	strings     []stringDelim
}

var (
	cStrings = []stringDelim{
		{open: `"`, close: `"`, escape: '\\'},
		{open: `'`, close: `'`, escape: '\\'},
	}

	cLikeSyntax = &syntax{
		lineMarkers: []string{"//"},
		blockOpen:   "/*",
		blockClose:  "*/",
		strings:     cStrings,
	}

	hashSyntax = &syntax{
		lineMarkers: []string{"#"},
		strings:     cStrings,
	}

	// genericSyntax covers allowlisted extensions with no known
	// language: both comment families, conservative strings.
	genericSyntax = &syntax{
		lineMarkers: []string{"//", "#"},
		blockOpen:   "/*",
		blockClose:  "*/",
		strings:     cStrings,
	}
)

// fallbackSyntax maps each language to its delimiter table.
var fallbackSyntax = map[lang.Language]*syntax{
	lang.C:      cLikeSyntax,
	lang.CPP:    cLikeSyntax,
	lang.CSharp: cLikeSyntax,
	lang.Java:   cLikeSyntax,
	lang.Kotlin: cLikeSyntax,
	lang.Scala:  cLikeSyntax,
	lang.Swift:  cLikeSyntax,
	lang.Rust:   cLikeSyntax,

	lang.Go: {
		lineMarkers: []string{"//"},
		blockOpen:   "/*",
		blockClose:  "*/",
		strings: []stringDelim{
			{open: `"`, close: `"`, escape: '\\'},
			{open: "'", close: "'", escape: '\\'},
			{open: "`", close: "`", multiline: true},
		},
	},

	lang.JavaScript: {
		lineMarkers: []string{"//"},
		blockOpen:   "/*",
		blockClose:  "*/",
		strings: []stringDelim{
			{open: `"`, close: `"`, escape: '\\'},
			{open: `'`, close: `'`, escape: '\\'},
			{open: "`", close: "`", escape: '\\', multiline: true},
		},
	},

	lang.Python: {
		lineMarkers: []string{"#"},
		strings: []stringDelim{
			// Triple-quoted literals first so they win over the single
			// quote forms at the same position.
			{open: `"""`, close: `"""`, escape: '\\', multiline: true},
			{open: `'''`, close: `'''`, escape: '\\', multiline: true},
			{open: `"`, close: `"`, escape: '\\'},
			{open: `'`, close: `'`, escape: '\\'},
		},
	},

	lang.Shell: hashSyntax,
	lang.Perl:  hashSyntax,
	lang.R:     hashSyntax,

	lang.Ruby: {
		lineMarkers: []string{"#"},
		blockOpen:   "=begin",
		blockClose:  "=end",
		strings:     cStrings,
	},

	lang.PHP: {
		lineMarkers: []string{"//", "#"},
		blockOpen:   "/*",
		blockClose:  "*/",
		strings:     cStrings,
	},

	lang.Lua: {
		lineMarkers: []string{"--"},
		blockOpen:   "--[[",
		blockClose:  "]]",
		strings:     cStrings,
	},

	lang.Haskell: {
		lineMarkers: []string{"--"},
		blockOpen:   "{-",
		blockClose:  "-}",
		strings: []stringDelim{
			{open: `"`, close: `"`, escape: '\\'},
		},
	},
}

// commentRegion is a byte range of the file classified as comment text,
// including its markers.
type commentRegion struct {
	start, end int
}

// detectFallback scans raw bytes without a parse tree.
func (d *Detector) detectFallback(ctx context.Context, content []byte, idx *lineIndex, language lang.Language) ([]Finding, error) {
	syn, ok := fallbackSyntax[language]
	if !ok {
		syn = genericSyntax
	}

	regions := splitComments(content, syn)

	var findings []Finding

	// Comment rules, restricted to comment regions.
	for _, region := range regions {
		if err := checkDeadline(ctx); err != nil {
			return nil, err
		}
		text := string(content[region.start:region.end])
		for _, rule := range d.rules.CommentRules() {
			if !rule.AppliesTo(language) {
				continue
			}
			for _, m := range rule.Regexp.FindAllStringIndex(text, -1) {
				findings = append(findings, newFinding(idx, region.start+m[0], region.start+m[1],
					rule.ID, rule.Category, rule.Severity, rule.Message, rule.Order))
			}
		}
	}

	// Textual stub rules apply anywhere, string literals included.
	for _, rule := range d.rules.StubRules() {
		if err := checkDeadline(ctx); err != nil {
			return nil, err
		}
		if !rule.AppliesTo(language) {
			continue
		}
		for _, m := range rule.Regexp.FindAllIndex(content, -1) {
			findings = append(findings, newFinding(idx, m[0], m[1],
				rule.ID, rule.Category, rule.Severity, rule.Message, rule.Order))
		}
	}

	return findings, nil
}

// splitComments runs the state machine and returns the comment regions.
func splitComments(content []byte, syn *syntax) []commentRegion {
	var regions []commentRegion

	state := stCode
	var regionStart int
	var activeString *stringDelim

	i := 0
	for i < len(content) {
		switch state {
		case stCode:
			if syn.blockOpen != "" && bytes.HasPrefix(content[i:], []byte(syn.blockOpen)) {
				regionStart = i
				state = stBlockComment
				i += len(syn.blockOpen)
				continue
			}
			if marker := matchLineMarker(content[i:], syn); marker != "" {
				regionStart = i
				state = stLineComment
				i += len(marker)
				continue
			}
			if delim := matchStringOpen(content[i:], syn); delim != nil {
				activeString = delim
				state = stString
				i += len(delim.open)
				continue
			}
			i++

		case stLineComment:
			if content[i] == '\n' {
				regions = append(regions, commentRegion{start: regionStart, end: i})
				state = stCode
			}
			i++

		case stBlockComment:
			if bytes.HasPrefix(content[i:], []byte(syn.blockClose)) {
				i += len(syn.blockClose)
				regions = append(regions, commentRegion{start: regionStart, end: i})
				state = stCode
				continue
			}
			i++

		case stString:
			if activeString.escape != 0 && content[i] == activeString.escape {
				state = stStringEscape
				i++
				continue
			}
			if bytes.HasPrefix(content[i:], []byte(activeString.close)) {
				i += len(activeString.close)
				state = stCode
				activeString = nil
				continue
			}
			if !activeString.multiline && content[i] == '\n' {
				// Unterminated single-line string; treat the newline as
				// the end so the rest of the file is not swallowed.
				state = stCode
				activeString = nil
			}
			i++

		case stStringEscape:
			state = stString
			i++
		}
	}

	// Flush an open comment at EOF (file may lack a final newline).
	if state == stLineComment || state == stBlockComment {
		regions = append(regions, commentRegion{start: regionStart, end: len(content)})
	}

	return regions
}

func matchLineMarker(rest []byte, syn *syntax) string {
	for _, marker := range syn.lineMarkers {
		if bytes.HasPrefix(rest, []byte(marker)) {
			return marker
		}
	}
	return ""
}

func matchStringOpen(rest []byte, syn *syntax) *stringDelim {
	for i := range syn.strings {
		if bytes.HasPrefix(rest, []byte(syn.strings[i].open)) {
			return &syn.strings[i]
		}
	}
	return nil
}
