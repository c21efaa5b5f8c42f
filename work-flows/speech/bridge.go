/*
Package speech connects speech engines to the conversation.

A Bridge owns at most one recognition session and at most one audible
utterance. Engines are pluggable: recognition and synthesis can each be
backed by Google Cloud, the assistant backend, or nothing at all, in which
case the matching operations report a capability error.
*/
package speech

import (
	"context"
	"strings"
	"sync"
	"time"

	"pgrkam-assistant/utils"
	"pgrkam-assistant/work-flows/errs"
	"pgrkam-assistant/work-flows/models"
)

// DefaultAutoSpeakDelay leaves time for a reply to be printed before it is read aloud.
const DefaultAutoSpeakDelay = 500 * time.Millisecond

type RecognitionResult struct {
	Transcript string
	IsFinal    bool
}

// RecognitionEvent is one update from a recognition engine. Err is set when
// the engine reports a failure; the session is over after such an event.
type RecognitionEvent struct {
	Results []RecognitionResult
	Err     error
}

type Recognizer interface {
	Start(ctx context.Context, locale string) (RecognitionSession, error)
}

// RecognitionSession streams events until Stop is called or the engine ends
// the session. The events channel is closed when the session is over.
type RecognitionSession interface {
	Events() <-chan RecognitionEvent
	Stop() error
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text, locale string) ([]byte, error)
}

// Player plays encoded audio and returns when playback finishes or ctx is done.
type Player interface {
	Play(ctx context.Context, audio []byte) error
}

type UtteranceState int

const (
	UtteranceEnded UtteranceState = iota
	UtteranceCanceled
	UtteranceFailed
)

func (s UtteranceState) String() string {
	switch s {
	case UtteranceCanceled:
		return "canceled"
	case UtteranceFailed:
		return "failed"
	default:
		return "ended"
	}
}

// UtteranceEvent is the single terminal event of an utterance.
type UtteranceEvent struct {
	ID    uint64
	Text  string
	State UtteranceState
	Err   error
}

type Config struct {
	Recognizer     Recognizer
	Synthesizer    Synthesizer
	Player         Player
	Locale         string
	AutoSpeak      bool
	AutoSpeakDelay time.Duration
}

type utterance struct {
	id     uint64
	text   string
	cancel context.CancelFunc
	done   chan struct{}
}

type listening struct {
	session RecognitionSession
	cancel  context.CancelFunc
}

type Bridge struct {
	mu sync.Mutex

	recognizer Recognizer
	synth      Synthesizer
	player     Player

	locale    string
	autoSpeak bool
	delay     time.Duration

	rootCtx    context.Context
	rootCancel context.CancelFunc
	wg         sync.WaitGroup

	listen     *listening
	transcript string

	current   *utterance
	nextID    uint64
	autoTimer *time.Timer
	autoSeq   uint64

	onTranscript []func(string)
	onUtterance  []func(UtteranceEvent)
	onError      []func(error)
}

func NewBridge(cfg Config) *Bridge {
	delay := cfg.AutoSpeakDelay
	if delay <= 0 {
		delay = DefaultAutoSpeakDelay
	}
	locale := cfg.Locale
	if locale == "" {
		locale = models.DefaultLanguage.Locale()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Bridge{
		recognizer: cfg.Recognizer,
		synth:      cfg.Synthesizer,
		player:     cfg.Player,
		locale:     locale,
		autoSpeak:  cfg.AutoSpeak,
		delay:      delay,
		rootCtx:    ctx,
		rootCancel: cancel,
	}
}

// OnTranscript registers fn for every transcript update. Each update is the
// whole current transcript, not a delta.
func (b *Bridge) OnTranscript(fn func(string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onTranscript = append(b.onTranscript, fn)
}

func (b *Bridge) OnUtterance(fn func(UtteranceEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onUtterance = append(b.onUtterance, fn)
}

// OnError registers fn for failures reported by the engines after the call
// that started them has returned.
func (b *Bridge) OnError(fn func(error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onError = append(b.onError, fn)
}

func (b *Bridge) CanListen() bool { return b.recognizer != nil }

func (b *Bridge) CanSpeak() bool { return b.synth != nil && b.player != nil }

func (b *Bridge) SetLocale(locale string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.locale = locale
}

func (b *Bridge) Locale() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.locale
}

func (b *Bridge) SetAutoSpeak(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.autoSpeak = enabled
	if !enabled {
		b.cancelAutoLocked()
	}
}

func (b *Bridge) AutoSpeak() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.autoSpeak
}

func (b *Bridge) IsListening() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listen != nil
}

func (b *Bridge) IsSpeaking() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current != nil
}

func (b *Bridge) Transcript() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.transcript
}

// StartListening opens a recognition session in the current locale. It is a
// no-op while a session is already open.
func (b *Bridge) StartListening() error {
	if b.recognizer == nil {
		return errs.Unsupported("speech recognition")
	}

	b.mu.Lock()
	if b.listen != nil {
		b.mu.Unlock()
		return nil
	}
	locale := b.locale
	b.transcript = ""
	b.mu.Unlock()

	ctx, cancel := context.WithCancel(b.rootCtx)
	session, err := b.recognizer.Start(ctx, locale)
	if err != nil {
		cancel()
		return errs.Wrap(errs.KindRecognition, err, "failed to start speech recognition")
	}

	l := &listening{session: session, cancel: cancel}
	b.mu.Lock()
	b.listen = l
	b.mu.Unlock()

	utils.Debug("speech recognition started", "locale", locale)

	b.wg.Add(1)
	go b.consume(l)
	return nil
}

func (b *Bridge) consume(l *listening) {
	defer b.wg.Done()
	defer b.endListening(l)

	for ev := range l.session.Events() {
		if ev.Err != nil {
			err := ev.Err
			if !errs.Is(err, errs.KindRecognition) {
				err = errs.Wrap(errs.KindRecognition, err, "speech recognition error")
			}
			utils.Error(err, "speech recognition failed")
			b.report(err)
			return
		}

		text := transcriptOf(ev.Results)
		if text == "" {
			continue
		}

		b.mu.Lock()
		if b.listen != l {
			b.mu.Unlock()
			return
		}
		b.transcript = text
		listeners := append([]func(string){}, b.onTranscript...)
		b.mu.Unlock()

		for _, fn := range listeners {
			fn(text)
		}
	}
}

func (b *Bridge) endListening(l *listening) {
	b.mu.Lock()
	if b.listen == l {
		b.listen = nil
	}
	b.mu.Unlock()
	l.cancel()
}

// transcriptOf joins the finalized segments of an update, or the interim ones
// when nothing is final yet.
func transcriptOf(results []RecognitionResult) string {
	var final, interim strings.Builder
	for _, r := range results {
		if r.IsFinal {
			final.WriteString(r.Transcript)
			final.WriteString(" ")
		} else {
			interim.WriteString(r.Transcript)
		}
	}
	if final.Len() > 0 {
		return strings.TrimSpace(final.String())
	}
	return strings.TrimSpace(interim.String())
}

// StopListening closes the open recognition session, if any. The transcript
// gathered so far is kept.
func (b *Bridge) StopListening() {
	b.mu.Lock()
	l := b.listen
	b.listen = nil
	b.mu.Unlock()

	if l == nil {
		return
	}
	if err := l.session.Stop(); err != nil {
		utils.Warn("failed to stop speech recognition", "error", err.Error())
	}
	l.cancel()
	utils.Debug("speech recognition stopped")
}

// Speak cancels whatever is playing and reads text aloud. It returns the
// utterance id; the outcome arrives later as an UtteranceEvent.
func (b *Bridge) Speak(text string) (uint64, error) {
	if !b.CanSpeak() {
		return 0, errs.Unsupported("speech synthesis")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, errs.Validation("nothing to speak")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelAutoLocked()
	return b.speakLocked(text), nil
}

func (b *Bridge) speakLocked(text string) uint64 {
	prev := b.current
	if prev != nil {
		prev.cancel()
	}

	b.nextID++
	ctx, cancel := context.WithCancel(b.rootCtx)
	u := &utterance{id: b.nextID, text: text, cancel: cancel, done: make(chan struct{})}
	b.current = u
	locale := b.locale

	b.wg.Add(1)
	go b.play(ctx, u, prev, locale)
	return u.id
}

func (b *Bridge) play(ctx context.Context, u, prev *utterance, locale string) {
	defer b.wg.Done()
	defer close(u.done)

	// The superseded utterance must be silent before this one starts.
	if prev != nil {
		<-prev.done
	}

	ev := UtteranceEvent{ID: u.id, Text: u.text, State: UtteranceEnded}
	audio, err := b.synth.Synthesize(ctx, u.text, locale)
	if err == nil && ctx.Err() == nil {
		err = b.player.Play(ctx, audio)
	}

	switch {
	case ctx.Err() != nil:
		ev.State = UtteranceCanceled
	case err != nil:
		ev.State = UtteranceFailed
		ev.Err = errs.Wrap(errs.KindSynthesis, err, "speech synthesis error")
	}

	b.mu.Lock()
	if b.current == u {
		b.current = nil
	}
	listeners := append([]func(UtteranceEvent){}, b.onUtterance...)
	b.mu.Unlock()
	u.cancel()

	if ev.Err != nil {
		utils.Error(ev.Err, "utterance failed", "utterance_id", u.id)
		b.report(ev.Err)
	}
	for _, fn := range listeners {
		fn(ev)
	}
}

// Stop silences the current utterance and any pending auto-speak.
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelAutoLocked()
	if b.current != nil {
		b.current.cancel()
	}
}

// StopAll ends both recognition and synthesis.
func (b *Bridge) StopAll() {
	b.Stop()
	b.StopListening()
}

// NotifyAssistantMessage schedules msg to be spoken when auto-speak is on.
// A later Speak, Stop or notification replaces the pending one.
func (b *Bridge) NotifyAssistantMessage(msg models.Message) {
	if msg.Role != models.MessageRoleAssistant || !b.CanSpeak() {
		return
	}
	text := strings.TrimSpace(msg.Content)
	if text == "" {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.autoSpeak {
		return
	}
	b.cancelAutoLocked()
	seq := b.autoSeq
	b.autoTimer = time.AfterFunc(b.delay, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.autoSeq != seq || b.rootCtx.Err() != nil {
			return
		}
		b.autoTimer = nil
		b.speakLocked(text)
	})
}

func (b *Bridge) cancelAutoLocked() {
	b.autoSeq++
	if b.autoTimer != nil {
		b.autoTimer.Stop()
		b.autoTimer = nil
	}
}

// Close stops all speech and waits for engine goroutines to exit.
func (b *Bridge) Close() {
	b.StopAll()
	b.mu.Lock()
	b.cancelAutoLocked()
	b.mu.Unlock()
	b.rootCancel()
	b.wg.Wait()
}

func (b *Bridge) report(err error) {
	b.mu.Lock()
	listeners := append([]func(error){}, b.onError...)
	b.mu.Unlock()
	for _, fn := range listeners {
		fn(err)
	}
}
