package ai

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/pkg/errors"

	"github.com/zhouzirui/cs-buddy/internal/config"
)

// NewBackend builds the backend selected by cfg.Provider. Configuration
// problems are returned before any network call is made.
func NewBackend(ctx context.Context, cfg config.AIConfig) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case config.ProviderGemini:
		backend, err := NewGeminiBackend(ctx, cfg.GoogleAPIKey, cfg.GeminiModel, geminiOptions(cfg))
		if err != nil {
			return nil, err
		}
		return backend, nil
	case config.ProviderArk:
		chatModel, err := cfg.NewArkChatModel(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create chat model")
		}
		return newEinoBackend(ctx, "ark/"+cfg.Model, chatModel)
	case config.ProviderEcho:
		return newEinoBackend(ctx, "echo", EchoModel{})
	default:
		return nil, errors.Errorf("unsupported provider %q", cfg.Provider)
	}
}

func newEinoBackend(ctx context.Context, name string, chatModel model.BaseChatModel) (Backend, error) {
	backend, err := NewEinoBackend(ctx, name, chatModel)
	if err != nil {
		return nil, err
	}
	return backend, nil
}

func geminiOptions(cfg config.AIConfig) GeminiOptions {
	var opts GeminiOptions
	if cfg.Temperature != nil {
		val := float32(*cfg.Temperature)
		opts.Temperature = &val
	}
	if cfg.TopP != nil {
		val := float32(*cfg.TopP)
		opts.TopP = &val
	}
	if cfg.MaxTokens != nil {
		opts.MaxTokens = int32(*cfg.MaxTokens)
	}
	return opts
}
