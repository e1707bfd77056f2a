package report

import (
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/skew202/antislop/pkg/pattern"
	"github.com/skew202/antislop/pkg/scan"
)

const informationURI = "https://github.com/skew202/antislop"

// renderSARIF emits a SARIF 2.1.0 report: one run per invocation, one
// result per finding. Severity maps to level: critical/high → error,
// medium → warning, low → note.
func renderSARIF(w io.Writer, result *scan.Result) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}

	run := sarif.NewRunWithInformationURI("antislop", informationURI)

	seenRules := make(map[string]bool)
	for i := range result.Findings {
		f := &result.Findings[i]

		if !seenRules[f.PatternID] {
			run.AddRule(f.PatternID).
				WithShortDescription(sarif.NewMultiformatMessageString(f.Message)).
				WithProperties(sarif.Properties{"category": string(f.Category)})
			seenRules[f.PatternID] = true
		}

		region := sarif.NewRegion().
			WithStartLine(f.Line).
			WithStartColumn(f.Column).
			WithEndLine(f.EndLine).
			WithEndColumn(f.EndColumn)

		location := sarif.NewLocationWithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewSimpleArtifactLocation(f.File)).
				WithRegion(region),
		)

		run.CreateResultForRule(f.PatternID).
			WithLevel(sarifLevel(f.Severity)).
			WithMessage(sarif.NewTextMessage(f.Message)).
			AddLocation(location)
	}

	report.AddRun(run)
	return report.PrettyWrite(w)
}

func sarifLevel(sev pattern.Severity) string {
	switch sev {
	case pattern.SevCritical, pattern.SevHigh:
		return "error"
	case pattern.SevMedium:
		return "warning"
	default:
		return "note"
	}
}
