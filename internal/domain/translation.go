package domain

import (
	"strings"

	"github.com/kapu/warmtalk-go/internal/util"
	"github.com/kapu/warmtalk-go/pkg/errors"
)

// Scenario is the conversational context the parent picks before translating.
// The selection only affects the assembled prompt, never parsing.
type Scenario string

const (
	ScenarioGeneral    Scenario = "general"
	ScenarioTantrum    Scenario = "tantrum"
	ScenarioHomework   Scenario = "homework"
	ScenarioChores     Scenario = "chores"
	ScenarioScreenTime Scenario = "screen-time"
	ScenarioSafety     Scenario = "safety"
	ScenarioMealtime   Scenario = "mealtime"
)

var scenarioLabels = map[Scenario]string{
	ScenarioGeneral:    "一般溝通",
	ScenarioTantrum:    "情緒崩潰/哭鬧",
	ScenarioHomework:   "寫功課/學習",
	ScenarioChores:     "做家事/整理",
	ScenarioScreenTime: "使用手機/平板",
	ScenarioSafety:     "安全提醒/危險行為",
	ScenarioMealtime:   "吃飯/挑食",
}

var scenarioPlaceholders = map[Scenario]string{
	ScenarioGeneral:    "例：你再不聽話我就不理你了！",
	ScenarioTantrum:    "例：閉嘴！不要再哭了，煩死了！",
	ScenarioHomework:   "例：現在立刻去寫功課，不然晚上不准看電視！",
	ScenarioChores:     "例：房間亂成這樣，你是豬嗎？快去收！",
	ScenarioScreenTime: "例：手機拿過來！你已經玩很久了！",
	ScenarioSafety:     "例：跟你說過多少次不要碰插座！",
	ScenarioMealtime:   "例：快點吃，不要挑食，不然以後長不高！",
}

func AllScenarios() []Scenario {
	return []Scenario{
		ScenarioGeneral,
		ScenarioTantrum,
		ScenarioHomework,
		ScenarioChores,
		ScenarioScreenTime,
		ScenarioSafety,
		ScenarioMealtime,
	}
}

// ParseScenario maps a wire value to a Scenario, defaulting to general for
// unknown input so a stale client never breaks a request.
func ParseScenario(raw string) Scenario {
	s := Scenario(util.Normalize(raw))
	if _, ok := scenarioLabels[s]; ok {
		return s
	}
	return ScenarioGeneral
}

// Label returns the human-readable zh-TW context label inserted into prompts.
func (s Scenario) Label() string {
	if label, ok := scenarioLabels[s]; ok {
		return label
	}
	return scenarioLabels[ScenarioGeneral]
}

// Placeholder returns the example utterance shown in the input box.
func (s Scenario) Placeholder() string {
	if p, ok := scenarioPlaceholders[s]; ok {
		return p
	}
	return scenarioPlaceholders[ScenarioGeneral]
}

// TranslationRequest is built once per user action and discarded afterwards.
type TranslationRequest struct {
	OriginalText string   `json:"originalText"`
	Scenario     Scenario `json:"scenario"`
}

func (r *TranslationRequest) Validate(maxRunes int) error {
	trimmed := strings.TrimSpace(r.OriginalText)
	if trimmed == "" {
		return errors.NewValidationError("original text must not be empty", "originalText", r.OriginalText)
	}
	if maxRunes > 0 && len([]rune(r.OriginalText)) > maxRunes {
		return errors.NewValidationError("original text too long", "originalText", len([]rune(r.OriginalText)))
	}
	return nil
}

// TranslationResult is the parsed model output. All five model-sourced fields
// are required; OriginalText is attached client-side and never trusted from
// the model. Immutable after creation.
type TranslationResult struct {
	OriginalText         string   `json:"originalText"`
	TranslatedText       string   `json:"translatedText"`
	Principles           []string `json:"principles"`
	PsychologicalContext string   `json:"psychologicalContext"`
	SuggestedAction      string   `json:"suggestedAction"`
	FrameworkReference   string   `json:"frameworkReference"`
}
