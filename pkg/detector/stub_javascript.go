package detector

import (
	"regexp"

	"github.com/skew202/antislop/pkg/lang"
)

// JavaScript and TypeScript share node kinds for everything the stub
// analysis touches; the TypeScript grammar is a superset.
func init() {
	jsSpec := &stubSpec{
		funcKinds: map[string]bool{
			"function_declaration":           true,
			"function_expression":            true,
			"generator_function_declaration": true,
			"method_definition":              true,
			"arrow_function":                 true,
		},
		bodyField: "body",
		bodyKinds: map[string]bool{"statement_block": true},
		noopKinds: map[string]bool{
			"empty_statement": true,
		},
		noopText: regexp.MustCompile(`^return(\s+(null|undefined))?;?$`),
		markers: []stubMarker{
			{
				kinds:   map[string]bool{"throw_statement": true},
				re:      regexp.MustCompile(`(?i)not\s?implemented`),
				id:      "stub-throw-not-implemented",
				message: "Thrown not-implemented stub",
			},
		},
		catchKinds:     map[string]bool{"catch_clause": true},
		catchBodyField: "body",
	}

	registerStubSpec(lang.JavaScript, jsSpec)
	registerStubSpec(lang.TypeScript, jsSpec)
}
