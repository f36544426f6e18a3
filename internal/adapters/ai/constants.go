package ai

// ProviderName represents an AI provider identifier
type ProviderName string

// Provider name constants
const (
	ProviderNameGoogle ProviderName = "gemini"
)

// String returns the string representation of the provider name
func (p ProviderName) String() string {
	return string(p)
}

// IsValid checks if the provider name is supported
func (p ProviderName) IsValid() bool {
	return p == ProviderNameGoogle
}

type ProviderModelName string

// Model name constants
const (
	ModelGeminiFlash ProviderModelName = "gemini-2.0-flash"
	ModelGeminiPro   ProviderModelName = "gemini-2.5-pro"
)
