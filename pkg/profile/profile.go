// Package profile implements shareable, versioned collections of slop
// patterns. Profiles compose through an `extends` DAG; remote profiles
// are fetched ahead of the scan and cached on disk.
package profile

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/skew202/antislop/pkg/pattern"
)

var (
	// ErrProfileCycle is returned when the extends graph has a cycle.
	// Cyclic profiles never produce partial rulesets; the scan fails.
	ErrProfileCycle = errors.New("profile extends cycle")

	// ErrProfileNotFound is returned when a named profile exists in no
	// search directory.
	ErrProfileNotFound = errors.New("profile not found")
)

// Metadata describes a profile.
type Metadata struct {
	Name        string `toml:"name"`
	Version     string `toml:"version,omitempty"`
	Description string `toml:"description,omitempty"`
	Author      string `toml:"author,omitempty"`
	// URL records the profile's canonical location. It is informational:
	// the cache is keyed by the URL a profile was fetched from.
	URL string `toml:"url,omitempty"`
	// Extends names the profiles this one inherits patterns from. Each
	// entry resolves like a --profile argument: name, path, or URL.
	Extends []string `toml:"extends,omitempty"`
}

// Profile is a named pattern collection plus optional scan filters.
type Profile struct {
	Metadata Metadata             `toml:"metadata"`
	Patterns []pattern.Definition `toml:"patterns"`
	// FileExtensions optionally narrows the scan's extension allowlist.
	FileExtensions []string `toml:"file_extensions,omitempty"`
	// Exclude adds glob exclusions to the scan.
	Exclude []string `toml:"exclude,omitempty"`
}

// Parse loads a profile from TOML bytes and validates it.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads and parses a profile file.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Validate checks metadata and every pattern definition. Severity,
// category, and regex problems surface here rather than mid-scan.
func (p *Profile) Validate() error {
	if p.Metadata.Name == "" {
		return errors.New("profile metadata.name is required")
	}
	for i, d := range p.Patterns {
		if d.Regex == "" {
			return fmt.Errorf("pattern %d: regex is required", i)
		}
		if _, err := regexp.Compile(d.Regex); err != nil {
			return fmt.Errorf("pattern %d: %w %q: %v", i, pattern.ErrInvalidRegex, d.Regex, err)
		}
		if _, err := pattern.ParseSeverity(d.Severity); err != nil {
			return fmt.Errorf("pattern %d: %w", i, err)
		}
		if _, err := pattern.ParseCategory(d.Category); err != nil {
			return fmt.Errorf("pattern %d: %w", i, err)
		}
	}
	return nil
}

// Marshal renders the profile as TOML, the same format Parse accepts.
func (p *Profile) Marshal() ([]byte, error) {
	return toml.Marshal(p)
}
