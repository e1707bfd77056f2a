package detector

import (
	"regexp"

	"github.com/skew202/antislop/pkg/lang"
)

func init() {
	registerStubSpec(lang.Ruby, &stubSpec{
		funcKinds: map[string]bool{
			"method":           true,
			"singleton_method": true,
		},
		bodyField: "body",
		// `def foo; end` parses with no body node at all.
		nilBodyIsStub: true,
		noopText:      regexp.MustCompile(`^(return(\s+nil)?|nil)$`),
		markers: []stubMarker{
			{
				kinds:   map[string]bool{"call": true, "command": true},
				re:      regexp.MustCompile(`^raise\s+NotImplementedError`),
				id:      "stub-raise-not-implemented",
				message: "NotImplementedError stub",
			},
		},
		catchKinds:     map[string]bool{"rescue": true},
		catchBodyField: "body",
		catchBodyKind:  "then",
	})
}
