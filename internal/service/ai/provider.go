package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kapu/warmtalk-go/internal/prompt"
	"github.com/kapu/warmtalk-go/pkg/errors"
)

// ChunkHandler receives one unit of partial text as the completion service
// generates output. Called synchronously, in arrival order.
type ChunkHandler func(chunk string)

// StreamProvider is a completion backend that can deliver a schema-constrained
// JSON document as a chunk stream. Non-streaming backends satisfy the contract
// by delivering the whole document as a single chunk.
type StreamProvider interface {
	Name() string
	Configured() bool
	GenerateStream(ctx context.Context, promptText string, onChunk ChunkHandler) error
	Ping(ctx context.Context) bool
}

// translationSchema constrains the model to the five-field result object.
var translationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"translatedText": {Type: genai.TypeString},
		"principles": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"psychologicalContext": {Type: genai.TypeString},
		"suggestedAction":      {Type: genai.TypeString},
		"frameworkReference":   {Type: genai.TypeString},
	},
	Required: []string{
		"translatedText",
		"principles",
		"psychologicalContext",
		"suggestedAction",
		"frameworkReference",
	},
}

// GeminiProvider streams structured output from the Gemini API.
type GeminiProvider struct {
	client         *genai.Client
	model          string
	thinkingBudget int
	logger         *zap.Logger
}

// NewGeminiProvider creates the primary provider. The client is created once
// here; rotating the credential means rebuilding the container, which is the
// defined reload point. An absent key yields a provider that reports
// Configured() == false and fails each call with a ConfigError.
func NewGeminiProvider(ctx context.Context, apiKey, model string, thinkingBudget int, logger *zap.Logger) (*GeminiProvider, error) {
	gp := &GeminiProvider{
		model:          model,
		thinkingBudget: thinkingBudget,
		logger:         logger,
	}

	if apiKey == "" {
		logger.Warn("Gemini API key not set; translation requests will fail until configured")
		return gp, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	gp.client = client
	return gp, nil
}

func (g *GeminiProvider) Name() string {
	return "Gemini"
}

func (g *GeminiProvider) Configured() bool {
	return g.client != nil
}

func (g *GeminiProvider) GenerateStream(ctx context.Context, promptText string, onChunk ChunkHandler) error {
	if g.client == nil {
		return errors.NewConfigError("Gemini API key is not configured", "GEMINI_API_KEY")
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: prompt.SystemInstruction}},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema:   translationSchema,
	}

	// Reasoning depth only applies to the deeper-reasoning model variant.
	if g.thinkingBudget > 0 {
		budget := int32(g.thinkingBudget)
		config.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: &budget}
	}

	g.logger.Debug("Streaming from Gemini",
		zap.String("model", g.model),
		zap.Int("thinking_budget", g.thinkingBudget),
	)

	chunks := 0
	for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, genai.Text(promptText), config) {
		if err != nil {
			g.logger.Error("Gemini stream failed", zap.Error(err), zap.Int("chunks", chunks))
			return err
		}
		if text := extractTextFromGeminiResponse(resp); text != "" {
			chunks++
			onChunk(text)
		}
	}

	if chunks == 0 {
		return fmt.Errorf("empty response stream from Gemini")
	}

	g.logger.Debug("Gemini stream complete", zap.Int("chunks", chunks))
	return nil
}

func (g *GeminiProvider) Ping(ctx context.Context) bool {
	if g.client == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	temp := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: 10,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		{Parts: []*genai.Part{{Text: "ping"}}},
	}, config)
	if err != nil {
		g.logger.Debug("Gemini ping failed", zap.Error(err))
		return false
	}

	return extractTextFromGeminiResponse(resp) != ""
}

func extractTextFromGeminiResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}

	var texts []string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}

	return strings.Join(texts, "")
}

// OpenAIProvider is the non-streaming fallback. It returns the complete JSON
// document as one chunk, so the preview path still works (a single big step).
type OpenAIProvider struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewOpenAIProvider(apiKey, model string, logger *zap.Logger) *OpenAIProvider {
	if apiKey == "" {
		return nil
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{
		client: &client,
		model:  model,
		logger: logger,
	}
}

func (o *OpenAIProvider) Name() string {
	return "OpenAI"
}

func (o *OpenAIProvider) Configured() bool {
	return o != nil && o.client != nil
}

func (o *OpenAIProvider) GenerateStream(ctx context.Context, promptText string, onChunk ChunkHandler) error {
	if o.client == nil {
		return errors.NewConfigError("OpenAI API key is not configured", "OPENAI_API_KEY")
	}

	o.logger.Info("Fallback: Generating with OpenAI", zap.String("model", o.model))

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(prompt.SystemInstruction + "\n\n" + jsonContractInstruction),
		openai.UserMessage(promptText),
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(o.model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(2048),
	})
	if err != nil {
		o.logger.Error("OpenAI generation failed", zap.Error(err))
		return err
	}

	if len(resp.Choices) == 0 {
		return fmt.Errorf("no choices in OpenAI response")
	}

	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("empty response from OpenAI")
	}

	o.logger.Debug("OpenAI response received", zap.Int("length", len(text)))
	onChunk(text)
	return nil
}

// jsonContractInstruction restates the response schema for backends without
// native structured-output support.
const jsonContractInstruction = `RETURN ONLY A STRICT JSON OBJECT. NO PROSE, NO EXPLANATIONS, NO MARKDOWN.
Fields (all required): translatedText: string, principles: array<string>, psychologicalContext: string, suggestedAction: string, frameworkReference: string`

func (o *OpenAIProvider) Ping(ctx context.Context) bool {
	if o.client == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("ping"),
		},
		MaxCompletionTokens: openai.Int(10),
	})
	if err != nil {
		o.logger.Debug("OpenAI ping failed", zap.Error(err))
		return false
	}

	return len(resp.Choices) > 0
}
