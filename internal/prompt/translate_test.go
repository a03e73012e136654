package prompt

import (
	"strings"
	"testing"

	"github.com/kapu/warmtalk-go/internal/domain"
)

func TestBuildTranslateEmbedsScenarioLabelAndText(t *testing.T) {
	got := BuildTranslate("你再不聽話我就不理你了！", domain.ScenarioGeneral)

	want := "情境：一般溝通\n家長想說的話：你再不聽話我就不理你了！"
	if got != want {
		t.Fatalf("unexpected prompt:\n got %q\nwant %q", got, want)
	}
}

func TestBuildTranslateKeepsTextVerbatim(t *testing.T) {
	// Whitespace and quote characters pass straight through; the prompt is
	// natural language, not markup.
	raw := `  手機拿過來！"現在"！  `
	got := BuildTranslate(raw, domain.ScenarioScreenTime)

	if !strings.Contains(got, raw) {
		t.Fatalf("original text was altered: %q", got)
	}
	if !strings.HasPrefix(got, "情境：使用手機/平板\n") {
		t.Fatalf("wrong scenario label: %q", got)
	}
}

func TestBuildTranslateCoversEveryScenario(t *testing.T) {
	for _, s := range domain.AllScenarios() {
		got := BuildTranslate("x", s)
		if !strings.Contains(got, s.Label()) {
			t.Errorf("scenario %s label missing from prompt %q", s, got)
		}
	}
}
