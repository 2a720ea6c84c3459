package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/resume-optimizer/internal/logger"
	"github.com/spigell/resume-optimizer/internal/utils"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-2.5-flash"
	provider     = "gemini"

	defaultMaxLogLength = 200
)

var (
	// ErrMissingAPIKey is returned before any request is attempted.
	ErrMissingAPIKey = errors.New("gemini api key is required")
	// ErrEmptyResponse is returned when the model replies without any text part.
	ErrEmptyResponse = errors.New("gemini api returned empty response")
)

// contentModels is the subset of *genai.Models the generator needs.
type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Options configure a Generator.
type Options struct {
	APIKey string
	Model  string
	// Temperature is passed through when positive.
	Temperature float32
	// MaxLogLength bounds prompt and reply previews in debug logs.
	MaxLogLength int
	Logger       *zap.Logger
}

// Generator wraps the Google GenAI client to provide simple prompt-based interactions.
type Generator struct {
	models      contentModels
	modelName   string
	temperature float32
	maxLogLen   int
	logger      *zap.Logger
}

// NewGenerator creates a Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, opts Options) (*Generator, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, opts), nil
}

func newGenerator(models contentModels, opts Options) *Generator {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}

	maxLogLen := opts.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	return &Generator{
		models:      models,
		modelName:   model,
		temperature: opts.Temperature,
		maxLogLen:   maxLogLen,
		logger:      logger.WithCommonFields(opts.Logger, provider, model),
	}
}

// GenerateContent sends the prompt to Gemini and returns the joined text parts
// of the reply. Failures are returned as is; there is no retry.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	var config *genai.GenerateContentConfig
	if g.temperature > 0 {
		temperature := g.temperature
		config = &genai.GenerateContentConfig{Temperature: &temperature}
	}

	g.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", len([]rune(prompt))),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, g.maxLogLen)),
	)

	started := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	output, err := responseText(resp)
	if err != nil {
		return "", err
	}

	g.logger.Debug("gemini generate content response",
		zap.Duration("took", time.Since(started)),
		zap.Int("response_length", len([]rune(output))),
		zap.String("response_preview", utils.TruncateForLog(output, g.maxLogLen)),
	)

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", ErrEmptyResponse
	}

	return output, nil
}
