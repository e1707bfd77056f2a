package detector

import (
	"regexp"

	"github.com/skew202/antislop/pkg/lang"
)

func init() {
	registerStubSpec(lang.C, &stubSpec{
		funcKinds: map[string]bool{
			"function_definition": true,
		},
		bodyField: "body",
		noopText:  regexp.MustCompile(`^return(\s+(0|NULL|nullptr))?;$`),
	})

	registerStubSpec(lang.CPP, &stubSpec{
		funcKinds: map[string]bool{
			"function_definition": true,
		},
		bodyField: "body",
		noopText:  regexp.MustCompile(`^return(\s+(0|NULL|nullptr|\{\}))?;$`),
		markers: []stubMarker{
			{
				kinds:   map[string]bool{"throw_statement": true, "throw_expression": true},
				re:      regexp.MustCompile(`(?i)not\s?implemented`),
				id:      "stub-throw-not-implemented",
				message: "Thrown not-implemented stub",
			},
		},
		catchKinds:     map[string]bool{"catch_clause": true},
		catchBodyField: "body",
	})
}
