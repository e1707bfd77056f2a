package detector

import (
	"regexp"

	"github.com/skew202/antislop/pkg/lang"
)

func init() {
	registerStubSpec(lang.Java, &stubSpec{
		funcKinds: map[string]bool{
			"method_declaration":      true,
			"constructor_declaration": true,
		},
		// Abstract and interface methods legitimately have no body.
		bodyField: "body",
		noopText:  regexp.MustCompile(`^return(\s+null)?;$`),
		markers: []stubMarker{
			{
				kinds:   map[string]bool{"throw_statement": true},
				re:      regexp.MustCompile(`UnsupportedOperationException|(?i)not\s?implemented`),
				id:      "stub-throw-unsupported",
				message: "Thrown not-implemented stub",
			},
		},
		catchKinds:     map[string]bool{"catch_clause": true},
		catchBodyField: "body",
	})
}
