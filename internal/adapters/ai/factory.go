package ai

import (
	"strings"
	"time"

	"atlas/internal/adapters/config"
	"atlas/pkg/errors"
)

// BuildRegistry initializes a ProviderRegistry with all enabled providers
// based on configuration.
func BuildRegistry(cfg config.AIConfig) (*ProviderRegistry, error) {
	registry := NewProviderRegistry()

	if cfg.GeminiKey != "" {
		if err := registry.Register(NewGeminiProvider(cfg.GeminiKey, defaultTimeout())); err != nil {
			return nil, err
		}
	}

	if len(registry.List()) == 0 {
		return nil, errors.Wrap(errors.ErrUnavailable, "no AI provider configured")
	}

	return registry, nil
}

func defaultTimeout() time.Duration {
	return 60 * time.Second
}

// NormalizeProviderName makes provider lookup more forgiving.
func NormalizeProviderName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
