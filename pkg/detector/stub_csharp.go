package detector

import (
	"regexp"

	"github.com/skew202/antislop/pkg/lang"
)

func init() {
	registerStubSpec(lang.CSharp, &stubSpec{
		funcKinds: map[string]bool{
			"method_declaration":       true,
			"constructor_declaration":  true,
			"local_function_statement": true,
		},
		// Interface members and abstract methods have no body;
		// expression-bodied members are not stub-checked.
		bodyField: "body",
		bodyKinds: map[string]bool{"block": true},
		noopText:  regexp.MustCompile(`^return(\s+(null|default(\(\w*\))?))?;$`),
		markers: []stubMarker{
			{
				kinds:   map[string]bool{"throw_statement": true, "throw_expression": true},
				re:      regexp.MustCompile(`NotImplementedException`),
				id:      "stub-throw-not-implemented-exception",
				message: "NotImplementedException stub",
			},
		},
		catchKinds:     map[string]bool{"catch_clause": true},
		catchBodyField: "body",
	})
}
