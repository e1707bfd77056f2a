// Package report renders scan results. Renderers are thin adapters over
// the scan core: they never recompute counts, only format them.
package report

import (
	"fmt"
	"io"

	"github.com/skew202/antislop/pkg/scan"
)

// Format selects an output renderer.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatSARIF Format = "sarif"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON, FormatSARIF:
		return Format(s), nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json, or sarif)", s)
	}
}

// Render writes the result to w in the chosen format.
func Render(w io.Writer, format Format, result *scan.Result) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, result)
	case FormatSARIF:
		return renderSARIF(w, result)
	default:
		return renderText(w, result)
	}
}
