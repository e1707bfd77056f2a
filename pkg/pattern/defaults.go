package pattern

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	toml "github.com/pelletier/go-toml/v2"
)

// Built-in pattern definitions are stored as individual TOML files and
// embedded at compile time, one file per category. The on-disk format is
// identical to the [[patterns]] tables accepted in project configuration
// and profiles, so users can copy a file out and edit it.
//
//go:embed defaults/*.toml
var defaultsFS embed.FS

type patternFile struct {
	Patterns []Definition `toml:"patterns"`
}

// Defaults returns the built-in pattern definitions in a stable order
// (embedded files sorted by name, patterns in file order).
func Defaults() ([]Definition, error) {
	entries, err := fs.ReadDir(defaultsFS, "defaults")
	if err != nil {
		return nil, fmt.Errorf("read embedded patterns: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var all []Definition
	for _, entry := range entries {
		data, err := fs.ReadFile(defaultsFS, "defaults/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read embedded patterns %s: %w", entry.Name(), err)
		}
		var pf patternFile
		if err := toml.Unmarshal(data, &pf); err != nil {
			return nil, fmt.Errorf("parse embedded patterns %s: %w", entry.Name(), err)
		}
		all = append(all, pf.Patterns...)
	}
	return all, nil
}

// MustDefaults is Defaults for callers that treat a broken embedded
// pattern set as a programming error.
func MustDefaults() []Definition {
	defs, err := Defaults()
	if err != nil {
		panic(err)
	}
	return defs
}
