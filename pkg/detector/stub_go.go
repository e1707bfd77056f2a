package detector

import (
	"regexp"

	"github.com/skew202/antislop/pkg/lang"
)

func init() {
	registerStubSpec(lang.Go, &stubSpec{
		funcKinds: map[string]bool{
			"function_declaration": true,
			"method_declaration":   true,
			"func_literal":         true,
		},
		bodyField: "body",
		noopText:  regexp.MustCompile(`^return(\s+nil)?$`),
		markers: []stubMarker{
			{
				kinds:   map[string]bool{"call_expression": true},
				re:      regexp.MustCompile(`^panic\(\s*"(?i:not implemented|unimplemented|todo)`),
				id:      "stub-panic-unimplemented",
				message: "Panic stub for an unimplemented function",
			},
		},
	})
}
