package report

import (
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/skew202/antislop/pkg/grammar"
	"github.com/skew202/antislop/pkg/lang"
	"github.com/skew202/antislop/pkg/profile"
)

// RenderLanguages writes the --list-languages table: every supported
// language, its extensions, and whether detection is AST-backed or
// fallback-only.
func RenderLanguages(w io.Writer, grammars *grammar.Registry) error {
	table := tablewriter.NewWriter(w)
	table.Header("Language", "Extensions", "Detection")

	for _, l := range lang.All {
		mode := "regex fallback"
		if grammars.Has(l) {
			mode = "tree-sitter"
		}
		if err := table.Append(l.Display(), strings.Join(lang.ExtensionsFor(l), " "), mode); err != nil {
			return err
		}
	}
	return table.Render()
}

// RenderProfiles writes the --list-profiles table.
func RenderProfiles(w io.Writer, infos []profile.Info) error {
	if len(infos) == 0 {
		_, err := io.WriteString(w, "No profiles found.\n\nSearched:\n  .antislop/profiles/\n  <user config>/antislop/profiles/\n  <user cache>/antislop/profiles/\n")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("Name", "Version", "Description", "Path")
	for _, info := range infos {
		if err := table.Append(info.Name, info.Version, info.Description, info.Path); err != nil {
			return err
		}
	}
	return table.Render()
}
