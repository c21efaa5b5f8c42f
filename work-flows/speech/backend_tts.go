package speech

import (
	"context"

	"pgrkam-assistant/work-flows/client"
)

// BackendSynthesizer asks the assistant backend for audio. The backend
// picks the voice, so the locale is not sent.
type BackendSynthesizer struct {
	apiClient client.Client
}

func NewBackendSynthesizer(apiClient client.Client) *BackendSynthesizer {
	return &BackendSynthesizer{apiClient: apiClient}
}

func (s *BackendSynthesizer) Synthesize(ctx context.Context, text, locale string) ([]byte, error) {
	return s.apiClient.TextToSpeech(ctx, text)
}
