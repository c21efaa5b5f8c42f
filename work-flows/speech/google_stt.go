package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"

	"pgrkam-assistant/utils"
	"pgrkam-assistant/work-flows/errs"
)

const (
	sampleRateHertz = 16000
	// 100ms of 16-bit mono audio.
	audioChunkSize = 3200
)

// AudioSource yields raw LINEAR16 mono audio at 16kHz until closed.
type AudioSource interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// GoogleRecognizer streams microphone audio to Google Cloud Speech-to-Text
// with interim results enabled.
type GoogleRecognizer struct {
	client *speech.Client
	source AudioSource
}

func NewGoogleRecognizer(ctx context.Context, credentialsFile string, source AudioSource) (*GoogleRecognizer, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	return &GoogleRecognizer{client: client, source: source}, nil
}

func (r *GoogleRecognizer) Start(ctx context.Context, locale string) (RecognitionSession, error) {
	ctx, cancel := context.WithCancel(ctx)

	stream, err := r.client.StreamingRecognize(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open recognition stream: %w", err)
	}

	config := &speechpb.StreamingRecognitionConfig{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            sampleRateHertz,
			AudioChannelCount:          1,
			LanguageCode:               locale,
			EnableAutomaticPunctuation: true,
		},
		InterimResults: true,
	}
	if err := stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: config,
		},
	}); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to send recognition config: %w", err)
	}

	audio, err := r.source.Open(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open audio source: %w", err)
	}

	s := &googleSession{
		ctx:    ctx,
		cancel: cancel,
		stream: stream,
		audio:  audio,
		events: make(chan RecognitionEvent),
	}
	go s.sendAudio()
	go s.receive()
	return s, nil
}

func (r *GoogleRecognizer) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

type googleSession struct {
	ctx    context.Context
	cancel context.CancelFunc
	stream speechpb.Speech_StreamingRecognizeClient
	audio  io.ReadCloser
	events chan RecognitionEvent
	once   sync.Once
}

func (s *googleSession) Events() <-chan RecognitionEvent {
	return s.events
}

// Stop closes the microphone. The stream drains the final results and
// then the events channel is closed.
func (s *googleSession) Stop() error {
	var err error
	s.once.Do(func() {
		err = s.audio.Close()
	})
	return err
}

func (s *googleSession) sendAudio() {
	buf := make([]byte, audioChunkSize)
	for {
		n, err := s.audio.Read(buf)
		if n > 0 {
			if sendErr := s.stream.Send(&speechpb.StreamingRecognizeRequest{
				StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
					AudioContent: append([]byte(nil), buf[:n]...),
				},
			}); sendErr != nil {
				utils.Warn("failed to send audio", "error", sendErr.Error())
				break
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && s.ctx.Err() == nil {
				utils.Debug("audio source closed", "error", err.Error())
			}
			break
		}
	}
	if err := s.stream.CloseSend(); err != nil {
		utils.Debug("failed to close recognition stream", "error", err.Error())
	}
}

func (s *googleSession) receive() {
	defer close(s.events)
	defer s.cancel()
	defer s.Stop()

	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			if s.ctx.Err() == nil {
				s.emit(RecognitionEvent{Err: errs.Wrap(errs.KindRecognition, err, "recognition stream failed")})
			}
			return
		}
		if st := resp.GetError(); st != nil {
			s.emit(RecognitionEvent{Err: errs.New(errs.KindRecognition, st.GetMessage())})
			return
		}

		var results []RecognitionResult
		for _, result := range resp.GetResults() {
			alts := result.GetAlternatives()
			if len(alts) == 0 {
				continue
			}
			results = append(results, RecognitionResult{
				Transcript: alts[0].GetTranscript(),
				IsFinal:    result.GetIsFinal(),
			})
		}
		if len(results) > 0 && !s.emit(RecognitionEvent{Results: results}) {
			return
		}
	}
}

func (s *googleSession) emit(ev RecognitionEvent) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.ctx.Done():
		return false
	}
}
