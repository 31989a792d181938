package factory

import (
	"fmt"

	"plant-journal-be/pkg/vision"
	"plant-journal-be/pkg/vision/anthropic"
	"plant-journal-be/pkg/vision/gemini"
)

// NewVisionProvider selects the identification backend once at construction
// time. Only one provider is ever active. The returned string is the
// effective model name after defaulting, for attribution on saved records.
func NewVisionProvider(providerType, apiKey, modelName string) (vision.Provider, string, error) {
	switch providerType {
	case "anthropic":
		p := anthropic.NewAnthropicProvider(apiKey, modelName)
		return p, p.ModelName, nil
	case "gemini":
		p := gemini.NewGeminiProvider(apiKey, modelName)
		return p, p.ModelName, nil
	default:
		return nil, "", fmt.Errorf("unsupported vision provider: %s", providerType)
	}
}
