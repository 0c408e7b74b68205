package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/justsurfingit/jacker/internal/metrics"
	"github.com/justsurfingit/jacker/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
)

const (
	DefaultMaxPromptChars    = 8000
	DefaultExtractionTimeout = 20 * time.Second
)

const jobExtractionPrompt = `Extract job information from this text and return ONLY a valid JSON object with these exact keys: companyName, jobTitle, location.

Text: "%s"

Return only the JSON object, no other text.`

type LLMService struct {
	Client         llms.Model
	MaxPromptChars int
	Timeout        time.Duration
	Logger         *zap.Logger
}

// NewLLMService builds the Gemini-backed extractor. An empty apiKey is not an
// error: the service is returned without a client and every call reports
// ErrConfigMissing, which sends the pipeline to the basic tier.
func NewLLMService(ctx context.Context, apiKey, model string, maxChars int, timeout time.Duration, log *zap.Logger) (*LLMService, error) {
	s := &LLMService{
		MaxPromptChars: maxChars,
		Timeout:        timeout,
		Logger:         log.With(zap.String("component", "llm")),
	}
	if apiKey == "" {
		s.Logger.Warn("GEMINI_API_KEY is empty; AI extraction disabled")
		return s, nil
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	s.Client = llm
	return s, nil
}

// ExtractJobDetails sends one prompt built from pageText and parses the answer.
// There is no retry; callers fall back instead.
func (s *LLMService) ExtractJobDetails(ctx context.Context, pageText string) (ext *models.JobExtraction, err error) {
	if s.Client == nil {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY not set", ErrConfigMissing)
	}

	start := time.Now()
	defer func() {
		metrics.ExtractionDuration.WithLabelValues(metrics.ResultLabel(err)).Observe(time.Since(start).Seconds())
	}()

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultExtractionTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prompt := BuildExtractionPrompt(pageText, s.MaxPromptChars)
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	ext, err = ParseExtraction(resp)
	if err != nil {
		var malformed *MalformedExtractionError
		if errors.As(err, &malformed) {
			s.Logger.Warn("unparseable extraction response", zap.String("raw", truncate(malformed.Raw, 500)))
		}
		return nil, err
	}
	return ext, nil
}

// BuildExtractionPrompt embeds at most maxChars characters of pageText.
func BuildExtractionPrompt(pageText string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxPromptChars
	}
	return fmt.Sprintf(jobExtractionPrompt, truncate(pageText, maxChars))
}

// ParseExtraction strips markdown code fences from a model answer and decodes
// the remaining JSON object. It has no side effects.
func ParseExtraction(text string) (*models.JobExtraction, error) {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return nil, &MalformedExtractionError{Raw: text, Err: errors.New("empty response")}
	}
	// json.Unmarshal would happily accept null into a struct pointer
	if !strings.HasPrefix(cleaned, "{") {
		return nil, &MalformedExtractionError{Raw: text, Err: errors.New("response is not a JSON object")}
	}

	var ext models.JobExtraction
	if err := json.Unmarshal([]byte(cleaned), &ext); err != nil {
		return nil, &MalformedExtractionError{Raw: text, Err: err}
	}
	return &ext, nil
}

// truncate cuts s to at most n characters without splitting a rune.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
