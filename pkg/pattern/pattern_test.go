package pattern

import (
	"errors"
	"testing"
)

func TestSeverityWeights(t *testing.T) {
	// The weights are an external contract; a change here is breaking.
	cases := map[Severity]int{
		SevLow:      1,
		SevMedium:   5,
		SevHigh:     15,
		SevCritical: 50,
	}
	for sev, want := range cases {
		if got := sev.Weight(); got != want {
			t.Errorf("%s.Weight() = %d, want %d", sev, got, want)
		}
	}
}

func TestParseSeverity(t *testing.T) {
	if _, err := ParseSeverity("medium"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sev, err := ParseSeverity(""); err != nil || sev != SevMedium {
		t.Fatalf("empty severity should default to medium, got %q, %v", sev, err)
	}
	if _, err := ParseSeverity("urgent"); !errors.Is(err, ErrInvalidSeverity) {
		t.Fatalf("expected ErrInvalidSeverity, got %v", err)
	}
}

func TestParseCategory(t *testing.T) {
	for _, name := range []string{"placeholder", "deferral", "hedging", "stub", "noise", "naming_convention"} {
		if _, err := ParseCategory(name); err != nil {
			t.Errorf("ParseCategory(%q): %v", name, err)
		}
	}
	if _, err := ParseCategory("style"); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestEffectiveIDStable(t *testing.T) {
	d := Definition{Regex: "(?i)todo", Category: "placeholder", Message: "m"}
	if d.EffectiveID() != d.EffectiveID() {
		t.Fatal("derived id not stable")
	}

	other := Definition{Regex: "(?i)todo", Category: "placeholder", Message: "different"}
	if d.EffectiveID() == other.EffectiveID() {
		t.Fatal("distinct definitions share a derived id")
	}

	explicit := Definition{Regex: "x", ID: "my-id"}
	if explicit.EffectiveID() != "my-id" {
		t.Fatalf("explicit id not honored: %q", explicit.EffectiveID())
	}
}

func TestDefaultsLoadAndCompile(t *testing.T) {
	defs, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults: %v", err)
	}
	if len(defs) == 0 {
		t.Fatal("no built-in patterns")
	}

	reg, err := Compile(defs)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	// Every category except stub-structural should be represented.
	seen := make(map[Category]bool)
	for _, rule := range reg.Rules() {
		seen[rule.Category] = true
	}
	for _, cat := range []Category{CatPlaceholder, CatDeferral, CatHedging, CatStub, CatNoise, CatNaming} {
		if !seen[cat] {
			t.Errorf("no built-in pattern for category %q", cat)
		}
	}
}

func TestCompileLaterWinsByID(t *testing.T) {
	base := []Definition{
		{ID: "a", Regex: "one", Severity: "low", Message: "base"},
		{ID: "b", Regex: "two", Severity: "low", Message: "keep"},
	}
	overlay := []Definition{
		{ID: "a", Regex: "one", Severity: "critical", Message: "override"},
	}

	reg, err := Compile(base, overlay)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 rules, got %d", reg.Len())
	}

	rule, ok := reg.Get("a")
	if !ok {
		t.Fatal("rule a missing")
	}
	if rule.Severity != SevCritical || rule.Message != "override" {
		t.Errorf("override not applied: %+v", rule)
	}
	// The override keeps the original position.
	if reg.Rules()[0].ID != "a" {
		t.Errorf("override should keep position 0, got %q", reg.Rules()[0].ID)
	}
}

func TestCompileInvalidRegex(t *testing.T) {
	_, err := Compile([]Definition{{Regex: "(unclosed", ID: "bad"}})
	if !errors.Is(err, ErrInvalidRegex) {
		t.Fatalf("expected ErrInvalidRegex, got %v", err)
	}
}

func TestFilterOnlyAndDisable(t *testing.T) {
	defs := []Definition{
		{ID: "p", Regex: "a", Category: "placeholder"},
		{ID: "s", Regex: "b", Category: "stub"},
		{ID: "h", Regex: "c", Category: "hedging"},
	}
	reg, err := Compile(defs)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	only := reg.Filter([]Category{CatStub}, nil)
	if only.Len() != 1 || only.Rules()[0].ID != "s" {
		t.Errorf("only filter wrong: %d rules", only.Len())
	}

	disabled := reg.Filter(nil, []Category{CatHedging})
	if disabled.Len() != 2 {
		t.Errorf("disable filter wrong: %d rules", disabled.Len())
	}
	if _, ok := disabled.Get("h"); ok {
		t.Error("hedging rule should be disabled")
	}

	// only wins over disable.
	both := reg.Filter([]Category{CatHedging}, []Category{CatHedging})
	if both.Len() != 1 || both.Rules()[0].ID != "h" {
		t.Errorf("only should win over disable: %d rules", both.Len())
	}
}

func TestLanguageRestriction(t *testing.T) {
	reg, err := Compile([]Definition{
		{ID: "py", Regex: "x", Languages: []string{"python"}},
		{ID: "any", Regex: "y"},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	py, _ := reg.Get("py")
	if !py.AppliesTo("python") {
		t.Error("python rule should apply to python")
	}
	if py.AppliesTo("go") {
		t.Error("python rule should not apply to go")
	}
	anyRule, _ := reg.Get("any")
	if !anyRule.AppliesTo("go") {
		t.Error("unrestricted rule should apply everywhere")
	}
}

func TestCommentAndStubRuleSplit(t *testing.T) {
	reg, err := Compile([]Definition{
		{ID: "c1", Regex: "a", Category: "placeholder"},
		{ID: "s1", Regex: "b", Category: "stub"},
		{ID: "n1", Regex: "c", Category: "naming_convention"},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if got := len(reg.CommentRules()); got != 1 {
		t.Errorf("CommentRules = %d, want 1", got)
	}
	if got := len(reg.StubRules()); got != 1 {
		t.Errorf("StubRules = %d, want 1", got)
	}
	if got := len(reg.NamingRules()); got != 1 {
		t.Errorf("NamingRules = %d, want 1", got)
	}
}
