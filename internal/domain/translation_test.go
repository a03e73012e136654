package domain

import (
	"strings"
	"testing"
)

func TestParseScenarioDefaultsToGeneral(t *testing.T) {
	cases := map[string]Scenario{
		"general":       ScenarioGeneral,
		"TANTRUM":       ScenarioTantrum,
		" screen-time ": ScenarioScreenTime,
		"unknown":       ScenarioGeneral,
		"":              ScenarioGeneral,
	}

	for raw, want := range cases {
		if got := ParseScenario(raw); got != want {
			t.Errorf("ParseScenario(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestEveryScenarioHasLabelAndPlaceholder(t *testing.T) {
	for _, s := range AllScenarios() {
		if s.Label() == "" {
			t.Errorf("scenario %q has no label", s)
		}
		if s.Placeholder() == "" {
			t.Errorf("scenario %q has no placeholder", s)
		}
	}
}

func TestValidateRejectsBlankAndOversized(t *testing.T) {
	blank := TranslationRequest{OriginalText: "  \n ", Scenario: ScenarioGeneral}
	if err := blank.Validate(500); err == nil {
		t.Fatal("blank input accepted")
	}

	long := TranslationRequest{OriginalText: strings.Repeat("気", 501), Scenario: ScenarioGeneral}
	if err := long.Validate(500); err == nil {
		t.Fatal("oversized input accepted")
	}

	// Rune count, not byte count: 500 CJK runes are well over 500 bytes.
	exact := TranslationRequest{OriginalText: strings.Repeat("気", 500), Scenario: ScenarioGeneral}
	if err := exact.Validate(500); err != nil {
		t.Fatalf("500-rune input rejected: %v", err)
	}
}
