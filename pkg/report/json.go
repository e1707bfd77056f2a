package report

import (
	"encoding/json"
	"io"

	"github.com/skew202/antislop/pkg/detector"
	"github.com/skew202/antislop/pkg/pattern"
	"github.com/skew202/antislop/pkg/scan"
)

// jsonOutput is the stable machine-readable schema. Field names and
// shapes are part of the external contract.
type jsonOutput struct {
	FilesScanned      int                `json:"files_scanned"`
	FilesWithFindings int                `json:"files_with_findings"`
	TotalFindings     int                `json:"total_findings"`
	Score             int                `json:"score"`
	BySeverity        jsonSeverityCounts `json:"by_severity"`
	Findings          []detector.Finding `json:"findings"`
}

type jsonSeverityCounts struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

func renderJSON(w io.Writer, result *scan.Result) error {
	findings := result.Findings
	if findings == nil {
		findings = []detector.Finding{}
	}

	out := jsonOutput{
		FilesScanned:      result.FilesScanned,
		FilesWithFindings: result.FilesWithFindings,
		TotalFindings:     result.TotalFindings,
		Score:             result.Score,
		BySeverity: jsonSeverityCounts{
			Low:      result.BySeverity[pattern.SevLow],
			Medium:   result.BySeverity[pattern.SevMedium],
			High:     result.BySeverity[pattern.SevHigh],
			Critical: result.BySeverity[pattern.SevCritical],
		},
		Findings: findings,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
