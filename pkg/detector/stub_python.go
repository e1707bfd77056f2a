package detector

import (
	"regexp"

	"github.com/skew202/antislop/pkg/lang"
)

func init() {
	registerStubSpec(lang.Python, &stubSpec{
		funcKinds: map[string]bool{
			"function_definition": true,
		},
		bodyField: "body",
		// A lone ellipsis or bare return body. pass is handled by the
		// placeholder rule so it keeps its own span.
		noopText: regexp.MustCompile(`^(\.\.\.|return(\s+None)?)$`),
		placeholderKinds: map[string]bool{
			"pass_statement": true,
		},
		placeholderID:  "stub-pass",
		placeholderMsg: "Placeholder pass statement",
		markers: []stubMarker{
			{
				kinds:   map[string]bool{"raise_statement": true},
				re:      regexp.MustCompile(`NotImplementedError`),
				id:      "stub-raise-not-implemented",
				message: "NotImplementedError stub",
			},
		},
		catchKinds:    map[string]bool{"except_clause": true},
		catchBodyKind: "block",
	})
}
