package ai

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kapu/warmtalk-go/internal/constants"
	"github.com/kapu/warmtalk-go/internal/domain"
	"github.com/kapu/warmtalk-go/internal/prompt"
	"github.com/kapu/warmtalk-go/internal/util"
	"github.com/kapu/warmtalk-go/pkg/errors"
)

// Translator turns one parent utterance into a structured warm rephrasing.
// It owns provider selection (primary Gemini stream, optional OpenAI
// fallback) and the circuit breaker guarding the completion service.
type Translator struct {
	primary        StreamProvider
	fallback       StreamProvider
	enableFallback bool
	circuitBreaker *util.CircuitBreaker
	logger         *zap.Logger
}

func NewTranslator(primary StreamProvider, fallback StreamProvider, enableFallback bool, logger *zap.Logger) *Translator {
	t := &Translator{
		primary:        primary,
		fallback:       fallback,
		enableFallback: enableFallback && fallback != nil && fallback.Configured(),
		logger:         logger,
	}

	t.circuitBreaker = util.NewCircuitBreaker(
		constants.CircuitBreakerConfig.FailureThreshold,
		constants.CircuitBreakerConfig.ResetTimeout,
		constants.CircuitBreakerConfig.HealthCheckInterval,
		t.healthCheckPing,
		logger,
	)

	return t
}

// Translate runs one request end to end: assemble the prompt, stream the
// response while surfacing previews, then parse and validate the completed
// document. Exactly one of (result, error) is returned; previews already
// emitted are never retracted on failure.
//
// onProgress receives the growing preview of the translated sentence,
// strictly for display. It is invoked synchronously per chunk, never after
// the terminal result or error.
func (t *Translator) Translate(ctx context.Context, req domain.TranslationRequest, onProgress func(preview string)) (*domain.TranslationResult, error) {
	if err := req.Validate(constants.AIInputLimits.MaxUtteranceLength); err != nil {
		return nil, err
	}

	// A missing credential is an actionable configuration problem, surfaced
	// as such rather than burned through the fallback path.
	if !t.primary.Configured() && !t.enableFallback {
		return nil, errors.NewConfigError("Gemini API key is not configured", "GEMINI_API_KEY")
	}

	if !t.circuitBreaker.CanExecute() {
		status := t.circuitBreaker.GetStatus()
		t.logger.Error("AI service unavailable (Circuit OPEN)",
			zap.String("state", status.State.String()),
			zap.Int("failure_count", status.FailureCount),
		)
		return nil, errors.NewServiceError("AI 服務暫時無法使用，請稍後再試", "ai", "translate", nil)
	}

	promptText := prompt.BuildTranslate(req.OriginalText, req.Scenario)

	raw, primaryErr := t.runStream(ctx, t.primary, promptText, onProgress)
	if primaryErr == nil {
		t.circuitBreaker.RecordSuccess()
		return Finalize(raw, req.OriginalText)
	}

	if t.enableFallback {
		raw, fallbackErr := t.runStream(ctx, t.fallback, promptText, onProgress)
		if fallbackErr == nil {
			t.circuitBreaker.RecordSuccess()
			t.logger.Info("Translation served by fallback provider")
			return Finalize(raw, req.OriginalText)
		}

		t.recordFailure(primaryErr)
		t.recordFailure(fallbackErr)
		return nil, t.classify(fallbackErr, primaryErr)
	}

	t.recordFailure(primaryErr)
	return nil, t.classify(primaryErr, nil)
}

// runStream drives one provider with a fresh accumulator. Chunk handling is
// synchronous: the accumulator re-scans its cumulative buffer on every chunk
// and the preview callback fires only when the preview actually grew.
func (t *Translator) runStream(ctx context.Context, provider StreamProvider, promptText string, onProgress func(preview string)) (string, error) {
	acc := NewStreamAccumulator(constants.StreamConfig.TargetField)

	ctx, cancel := context.WithTimeout(ctx, constants.StreamConfig.RequestTimeout)
	defer cancel()

	err := provider.GenerateStream(ctx, promptText, func(chunk string) {
		preview, changed := acc.Feed(chunk)
		if changed && onProgress != nil {
			onProgress(preview)
		}
	})
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(acc.Raw()) == "" {
		return "", errors.NewServiceError("completion service returned an empty stream", provider.Name(), "generate", nil)
	}

	return acc.Raw(), nil
}

// classify maps a provider failure onto the user-facing error taxonomy. The
// primary error is preferred for auth/config classification since that is the
// credential the operator actually manages.
func (t *Translator) classify(err error, primaryErr error) error {
	for _, candidate := range []error{primaryErr, err} {
		if candidate == nil {
			continue
		}
		switch errors.Code(candidate) {
		case errors.CodeConfig, errors.CodeAuth, errors.CodeParse:
			return candidate
		}
		if isAuthError(candidate) {
			return errors.NewAuthError("completion service rejected the API credential", candidate)
		}
	}
	return errors.NewServiceError("AI 服務發生錯誤，請稍後再試", "ai", "translate", err)
}

func (t *Translator) recordFailure(err error) {
	if err == nil || !isServiceFailure(err) {
		return
	}

	timeout := constants.CircuitBreakerConfig.ResetTimeout
	if isRateLimitError(err) {
		timeout = constants.CircuitBreakerConfig.RateLimitTimeout
	}
	t.circuitBreaker.RecordFailure(timeout)
}

func (t *Translator) healthCheckPing() bool {
	t.logger.Info("Health Check: Testing AI services...")

	ctx, cancel := context.WithTimeout(context.Background(), constants.CircuitBreakerConfig.HealthCheckTimeout)
	defer cancel()

	primaryOK := t.primary != nil && t.primary.Ping(ctx)

	fallbackOK := false
	if t.enableFallback {
		fallbackOK = t.fallback.Ping(ctx)
	}

	isHealthy := primaryOK || fallbackOK

	t.logger.Info("Health Check: Result",
		zap.Bool("primary", primaryOK),
		zap.Bool("fallback", fallbackOK),
		zap.Bool("healthy", isHealthy),
	)

	return isHealthy
}

func (t *Translator) GetCircuitStatus() util.CircuitBreakerStatus {
	return t.circuitBreaker.GetStatus()
}

func (t *Translator) ResetCircuit() {
	t.circuitBreaker.Reset()
}

var (
	statusCodeRegex = regexp.MustCompile(`\b([45]\d{2})\b`)
	jsonCodeRegex   = regexp.MustCompile(`"code":\s*(\d{3})`)
)

func isAuthError(err error) bool {
	msg := err.Error()
	if strings.Contains(msg, "UNAUTHENTICATED") || strings.Contains(msg, "PERMISSION_DENIED") {
		return true
	}
	if strings.Contains(msg, "API key not valid") || strings.Contains(msg, "API_KEY_INVALID") {
		return true
	}
	if code, ok := extractStatusCode(msg); ok {
		return code == 401 || code == 403
	}
	return false
}

func isServiceFailure(err error) bool {
	msg := err.Error()

	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") ||
		strings.Contains(msg, "connection refused") {
		return true
	}

	if isRateLimitError(err) {
		return true
	}

	if code, ok := extractStatusCode(msg); ok {
		return code >= 500 && code < 600
	}

	return false
}

func isRateLimitError(err error) bool {
	msg := err.Error()

	if strings.Contains(msg, "429") || strings.Contains(msg, "Rate limit") || strings.Contains(msg, "quota") {
		return true
	}

	if code, ok := extractStatusCode(msg); ok {
		return code == 429
	}

	return false
}

func extractStatusCode(msg string) (int, bool) {
	if matches := jsonCodeRegex.FindStringSubmatch(msg); len(matches) > 1 {
		if code, err := strconv.Atoi(matches[1]); err == nil {
			return code, true
		}
	}
	if matches := statusCodeRegex.FindStringSubmatch(msg); len(matches) > 1 {
		if code, err := strconv.Atoi(matches[1]); err == nil {
			return code, true
		}
	}
	return 0, false
}
