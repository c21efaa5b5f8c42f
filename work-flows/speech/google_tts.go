package speech

import (
	"context"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"

	"pgrkam-assistant/utils"
)

// GoogleSynthesizer renders MP3 audio with Google Cloud Text-to-Speech.
type GoogleSynthesizer struct {
	client *texttospeech.Client
}

// NewGoogleSynthesizer creates the client. An empty credentialsFile falls
// back to application default credentials.
func NewGoogleSynthesizer(ctx context.Context, credentialsFile string) (*GoogleSynthesizer, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}
	return &GoogleSynthesizer{client: client}, nil
}

func (s *GoogleSynthesizer) Synthesize(ctx context.Context, text, locale string) ([]byte, error) {
	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: locale,
			SsmlGender:   texttospeechpb.SsmlVoiceGender_FEMALE,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}

	resp, err := s.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, err
	}

	utils.Debug("synthesized speech", "locale", locale, "bytes", len(resp.AudioContent))
	return resp.AudioContent, nil
}

func (s *GoogleSynthesizer) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
