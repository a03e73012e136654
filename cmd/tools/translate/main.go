// Command translate runs one utterance through the translator from the shell,
// streaming the preview to stdout as it arrives. Useful for prompt tuning
// without a browser attached.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/warmtalk-go/internal/config"
	"github.com/kapu/warmtalk-go/internal/domain"
	"github.com/kapu/warmtalk-go/internal/service/ai"
)

func main() {
	var scenarioFlag string
	var asJSON bool
	var timeout time.Duration

	flag.StringVar(&scenarioFlag, "scenario", "general", "conversational scenario (general, tantrum, homework, chores, screen-time, safety, mealtime)")
	flag.BoolVar(&asJSON, "json", false, "print the full result as JSON instead of formatted text")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "overall request timeout")
	flag.Parse()

	utterance := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if utterance == "" {
		fmt.Fprintln(os.Stderr, "usage: translate [-scenario name] [-json] <utterance>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := zap.NewNop()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	gemini, err := ai.NewGeminiProvider(ctx, cfg.Gemini.APIKey, cfg.Gemini.ActiveModel(), cfg.Gemini.ThinkingBudget, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create provider: %v\n", err)
		os.Exit(1)
	}

	var fallback ai.StreamProvider
	if openai := ai.NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger); openai != nil {
		fallback = openai
	}

	translator := ai.NewTranslator(gemini, fallback, cfg.OpenAI.EnableFallback, logger)

	req := domain.TranslationRequest{
		OriginalText: utterance,
		Scenario:     domain.ParseScenario(scenarioFlag),
	}

	// Each preview replaces the previous line, so the sentence types itself
	// out in place.
	var lastLen int
	result, err := translator.Translate(ctx, req, func(preview string) {
		fmt.Printf("\r%s%s", preview, strings.Repeat(" ", max(0, lastLen-len(preview))))
		lastLen = len(preview)
	})
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Translation failed: %v\n", err)
		os.Exit(1)
	}

	if asJSON {
		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(out))
		return
	}

	fmt.Printf("原句：%s\n", result.OriginalText)
	fmt.Printf("溫暖翻譯：%s\n", result.TranslatedText)
	fmt.Printf("心理背景：%s\n", result.PsychologicalContext)
	fmt.Printf("建議行動：%s\n", result.SuggestedAction)
	fmt.Printf("理論依據：%s\n", result.FrameworkReference)
	if len(result.Principles) > 0 {
		fmt.Printf("原則：%s\n", strings.Join(result.Principles, "、"))
	}
}
