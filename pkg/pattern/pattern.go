// Package pattern defines slop detection rules and compiles them into a
// shared read-only registry used by all concurrent detectors.
package pattern

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/skew202/antislop/pkg/lang"
)

// Severity grades how urgent a finding is.
type Severity string

const (
	SevLow      Severity = "low"
	SevMedium   Severity = "medium"
	SevHigh     Severity = "high"
	SevCritical Severity = "critical"
)

// Severities lists all severities from least to most severe.
var Severities = []Severity{SevLow, SevMedium, SevHigh, SevCritical}

// severityWeights are part of the external contract: the sloppy score is
// the sum of these weights over all findings. Changing them is a
// breaking change.
var severityWeights = map[Severity]int{
	SevLow:      1,
	SevMedium:   5,
	SevHigh:     15,
	SevCritical: 50,
}

// Weight returns the score contribution of a finding at this severity.
func (s Severity) Weight() int {
	return severityWeights[s]
}

// Rank orders severities for dedup precedence: low=0 .. critical=3.
// Unknown values return -1.
func (s Severity) Rank() int {
	switch s {
	case SevLow:
		return 0
	case SevMedium:
		return 1
	case SevHigh:
		return 2
	case SevCritical:
		return 3
	default:
		return -1
	}
}

// ParseSeverity validates a severity string from configuration.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SevLow, SevMedium, SevHigh, SevCritical:
		return Severity(s), nil
	case "":
		return SevMedium, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSeverity, s)
	}
}

// Category classifies what kind of slop a pattern detects.
type Category string

const (
	CatPlaceholder Category = "placeholder"
	CatDeferral    Category = "deferral"
	CatHedging     Category = "hedging"
	CatStub        Category = "stub"
	CatNoise       Category = "noise"
	CatNaming      Category = "naming_convention"
)

// Categories lists all categories in display order.
var Categories = []Category{CatPlaceholder, CatStub, CatDeferral, CatHedging, CatNoise, CatNaming}

// ParseCategory validates a category string from configuration.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CatPlaceholder, CatDeferral, CatHedging, CatStub, CatNoise, CatNaming:
		return Category(s), nil
	case "":
		return CatPlaceholder, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
}

// Definition is a single detection rule as it appears in TOML
// configuration and profile files. String-typed fields are validated
// when the definition is compiled into the registry.
type Definition struct {
	// Regex to match. Case-insensitivity via an inline (?i) flag.
	Regex string `koanf:"regex" toml:"regex"`
	// Severity: low, medium, high, critical. Defaults to medium.
	Severity string `koanf:"severity" toml:"severity"`
	// Human-readable message shown with each finding.
	Message string `koanf:"message" toml:"message"`
	// Category: placeholder, deferral, hedging, stub, noise,
	// naming_convention. Defaults to placeholder.
	Category string `koanf:"category" toml:"category"`
	// ID is a stable identifier for overrides and suppression. When
	// empty, a content hash of (regex, category, message) is assigned.
	ID string `koanf:"id" toml:"id,omitempty"`
	// Languages restricts the pattern to the listed languages. Empty
	// means all.
	Languages []string `koanf:"languages" toml:"languages,omitempty"`
}

// EffectiveID returns the definition's explicit id, or the stable derived
// id when none is set. Derived ids survive profile round-trips, so later
// sources can still override anonymous patterns.
func (d Definition) EffectiveID() string {
	if d.ID != "" {
		return d.ID
	}
	sum := sha256.Sum256([]byte(d.Regex + "\x00" + d.Category + "\x00" + d.Message))
	return "p-" + hex.EncodeToString(sum[:6])
}

// AppliesTo reports whether the definition is enabled for a language.
func (d Definition) AppliesTo(l lang.Language) bool {
	if len(d.Languages) == 0 {
		return true
	}
	for _, name := range d.Languages {
		if lang.Language(name) == l {
			return true
		}
	}
	return false
}
