package scan

import (
	"path/filepath"

	"github.com/skew202/antislop/pkg/detector"
)

// checkNaming applies naming_convention rules to the basename of every
// scanned file. Findings anchor to line 1 column 1 of the offending
// file; the matched text is the basename itself.
func (s *Scanner) checkNaming(result *Result) {
	rules := s.rules.NamingRules()
	if len(rules) == 0 {
		return
	}

	for _, path := range result.scannedPaths {
		base := filepath.Base(path)
		for _, rule := range rules {
			m := rule.Regexp.FindStringIndex(base)
			if m == nil {
				continue
			}
			result.Findings = append(result.Findings, detector.Finding{
				File:      path,
				Line:      1,
				Column:    1,
				EndLine:   1,
				EndColumn: 1,
				MatchText: base,
				PatternID: rule.ID,
				Category:  rule.Category,
				Severity:  rule.Severity,
				Message:   rule.Message,
			})
		}
	}
}
