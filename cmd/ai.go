package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-optimizer/internal/ai"
	"github.com/spigell/resume-optimizer/internal/ai/gemini"
	"github.com/spigell/resume-optimizer/internal/secrets"
	"github.com/spigell/resume-optimizer/internal/web"
)

const apiKeyHint = "set GEMINI_API_KEY, GEMINI_API_KEY_FILE or ai.gemini.api-key in the configuration file"

func checkProvider(cfg *AIConfig) error {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
	return nil
}

// resolveAPIKey loads the configured key. A key file wins over the inline value.
func resolveAPIKey(cfg *GeminiConfig) (string, error) {
	return secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
	})
}

// generatorFactory builds Gemini generators sharing the configured model settings.
func generatorFactory(cfg *GeminiConfig, logger *zap.Logger) web.GeneratorFactory {
	return func(ctx context.Context, apiKey string) (ai.Generator, error) {
		generator, err := gemini.NewGenerator(ctx, gemini.Options{
			APIKey:       apiKey,
			Model:        cfg.Model,
			Temperature:  cfg.Temperature,
			MaxLogLength: cfg.MaxLogLength,
			Logger:       logger,
		})
		if err != nil {
			return nil, err
		}
		return generator, nil
	}
}
