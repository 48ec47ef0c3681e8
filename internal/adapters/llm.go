package adapters

import (
	"github.com/DoctorRyner/mistral-go"
)

// LlmAdapter holds the Mistral client behind move explanations. The agent
// key selects the pre-configured agent that answers them; the whole adapter
// stays out of the wiring when no API key is set.
type LlmAdapter struct {
	Client   *mistral.MistralClient
	apiKey   string
	AgentKey string
}

func NewLlmAdapter(apiKey string, agentKey string) *LlmAdapter {
	adapter := &LlmAdapter{apiKey: apiKey, AgentKey: agentKey}
	adapter.Client = mistral.NewMistralClientDefault(apiKey)
	return adapter
}
