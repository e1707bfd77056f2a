package scan

import (
	"sort"

	"github.com/skew202/antislop/pkg/detector"
	"github.com/skew202/antislop/pkg/pattern"
)

// Result is the aggregate outcome of a scan. Findings are in stable
// order: file path ascending, then line, then column.
type Result struct {
	Findings          []detector.Finding
	FilesScanned      int
	FilesWithFindings int
	TotalFindings     int
	// Score is the severity-weighted sum over all findings
	// (low=1, medium=5, high=15, critical=50).
	Score      int
	BySeverity map[pattern.Severity]int
	ByCategory map[pattern.Category]int

	// Per-file failure counters. None of these abort a scan.
	FilesErrored  int // unreadable files
	FilesTimedOut int // detector budget exceeded, partially scanned
	FilesSkipped  int // oversize files skipped during the walk

	// scannedPaths feeds the filename convention check.
	scannedPaths []string
}

// finalize sorts findings and computes every derived count. Called once
// after all workers drain.
func (r *Result) finalize() {
	sort.SliceStable(r.Findings, func(i, j int) bool {
		a, b := &r.Findings[i], &r.Findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})

	r.TotalFindings = len(r.Findings)
	r.BySeverity = make(map[pattern.Severity]int)
	r.ByCategory = make(map[pattern.Category]int)
	r.Score = 0

	files := make(map[string]bool)
	for i := range r.Findings {
		f := &r.Findings[i]
		r.BySeverity[f.Severity]++
		r.ByCategory[f.Category]++
		r.Score += f.Severity.Weight()
		files[f.File] = true
	}
	r.FilesWithFindings = len(files)
}
