package ai

import (
	"encoding/json"
	"strings"

	"github.com/kapu/warmtalk-go/internal/domain"
	"github.com/kapu/warmtalk-go/pkg/errors"
)

// rawTranslation mirrors the response schema with pointer fields so that a
// missing key is distinguishable from an empty value.
type rawTranslation struct {
	TranslatedText       *string   `json:"translatedText"`
	Principles           *[]string `json:"principles"`
	PsychologicalContext *string   `json:"psychologicalContext"`
	SuggestedAction      *string   `json:"suggestedAction"`
	FrameworkReference   *string   `json:"frameworkReference"`
}

// StripCodeFence removes a leading/trailing fenced-block marker the model may
// emit around the JSON despite instruction not to. Tolerant of its absence.
func StripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, "```json"))
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, "```"))
	}
	if strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, "```"))
	}
	return cleaned
}

// Finalize parses the completed response buffer into a TranslationResult.
// All five model-sourced fields must be present; originalText always comes
// from the caller, never from the model's own echo of the input.
func Finalize(rawBuffer, originalText string) (*domain.TranslationResult, error) {
	cleaned := StripCodeFence(rawBuffer)
	if cleaned == "" {
		return nil, errors.NewParseError("completion response is empty", "", nil)
	}

	var raw rawTranslation
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, errors.NewParseError("completion response is not valid JSON", "", err)
	}

	if missing := missingField(&raw); missing != "" {
		return nil, errors.NewParseError("completion response missing required field", missing, nil)
	}
	if strings.TrimSpace(*raw.TranslatedText) == "" {
		return nil, errors.NewParseError("completion response has empty translation", "translatedText", nil)
	}

	principles := *raw.Principles
	if principles == nil {
		principles = []string{}
	}

	return &domain.TranslationResult{
		OriginalText:         originalText,
		TranslatedText:       *raw.TranslatedText,
		Principles:           principles,
		PsychologicalContext: *raw.PsychologicalContext,
		SuggestedAction:      *raw.SuggestedAction,
		FrameworkReference:   *raw.FrameworkReference,
	}, nil
}

func missingField(raw *rawTranslation) string {
	switch {
	case raw.TranslatedText == nil:
		return "translatedText"
	case raw.Principles == nil:
		return "principles"
	case raw.PsychologicalContext == nil:
		return "psychologicalContext"
	case raw.SuggestedAction == nil:
		return "suggestedAction"
	case raw.FrameworkReference == nil:
		return "frameworkReference"
	}
	return ""
}
