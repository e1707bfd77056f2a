package detector

import (
	"regexp"

	"github.com/skew202/antislop/pkg/lang"
)

func init() {
	registerStubSpec(lang.Rust, &stubSpec{
		funcKinds: map[string]bool{
			"function_item": true,
		},
		bodyField: "body",
		markers: []stubMarker{
			{
				kinds:   map[string]bool{"macro_invocation": true},
				re:      regexp.MustCompile(`^(todo|unimplemented)!`),
				id:      "stub-unimplemented-macro",
				message: "Unimplemented macro stub",
			},
		},
	})
}
