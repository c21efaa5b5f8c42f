package gateway

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"pgrkam-assistant/work-flows/client/clienttest"
	"pgrkam-assistant/work-flows/i18n"
	"pgrkam-assistant/work-flows/managers"
	"pgrkam-assistant/work-flows/models"
	"pgrkam-assistant/work-flows/services"
	"pgrkam-assistant/work-flows/speech"
	"pgrkam-assistant/work-flows/storage"

	"github.com/fatih/color"
)

func init() {
	color.NoColor = true
}

func newTestOrchestrator(t *testing.T, fake *clienttest.Fake, store storage.Store, script string) (*ChatbotOrchestrator, *bytes.Buffer) {
	t.Helper()
	return newTestOrchestratorWithSpeech(t, fake, store, script, speech.Config{})
}

func newTestOrchestratorWithSpeech(t *testing.T, fake *clienttest.Fake, store storage.Store, script string, speechCfg speech.Config) (*ChatbotOrchestrator, *bytes.Buffer) {
	t.Helper()

	provider, err := i18n.NewProvider(store)
	if err != nil {
		t.Fatalf("NewProvider err: %v", err)
	}
	auth := services.NewAuthState(store)
	profile := services.NewProfileManager(fake, auth)
	bridge := speech.NewBridge(speechCfg)
	t.Cleanup(bridge.Close)

	deps := Dependencies{
		Client:       fake,
		Store:        store,
		Auth:         auth,
		Accounts:     services.NewAccountService(fake, auth),
		Profile:      profile,
		Sessions:     services.NewSessionList(fake),
		Conversation: managers.NewConversationManager(fake, profile, provider),
		Speech:       bridge,
		I18n:         provider,
		ExportDir:    t.TempDir(),
	}

	out := &bytes.Buffer{}
	return NewChatbotOrchestrator(deps, strings.NewReader(script), out), out
}

func loggedInStore(t *testing.T) storage.Store {
	t.Helper()
	store := storage.NewMemoryStore()
	if err := store.Set(storage.KeyToken, "opaque-token"); err != nil {
		t.Fatalf("Set err: %v", err)
	}
	return store
}

func TestParseCommand(t *testing.T) {
	cases := []struct {
		line string
		name string
		args int
		ok   bool
	}{
		{"/open 2", "open", 1, true},
		{"  /LANG hi ", "lang", 1, true},
		{"/autospeak", "autospeak", 0, true},
		{"find me a job", "", 0, false},
		{"/", "", 0, false},
	}
	for _, tc := range cases {
		cmd, ok := parseCommand(tc.line)
		if ok != tc.ok || cmd.name != tc.name || len(cmd.args) != tc.args {
			t.Fatalf("parseCommand(%q) = %+v, %v", tc.line, cmd, ok)
		}
	}
}

func TestChatRedirectsToLoginThenSends(t *testing.T) {
	fake := &clienttest.Fake{
		ChatFunc: func(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
			return &models.ChatResponse{Response: "Try the Mohali job fair", SessionID: "s-42"}, nil
		},
	}
	store := storage.NewMemoryStore()
	co, out := newTestOrchestrator(t, fake, store, "jobs near me\nuser@example.com\nsecret1\n/quit\n")

	if err := co.Run(context.Background()); err != nil {
		t.Fatalf("Run err: %v", err)
	}

	reqs := fake.Requests()
	if len(reqs) != 1 || reqs[0].Message != "jobs near me" {
		t.Fatalf("unexpected chat requests: %+v", reqs)
	}
	if token, ok, _ := store.Get(storage.KeyToken); !ok || token != "token" {
		t.Fatalf("login token not stored: %q", token)
	}
	if last, ok, _ := store.Get(storage.KeyLastSession); !ok || last != "s-42" {
		t.Fatalf("bound session not remembered: %q", last)
	}

	text := out.String()
	for _, want := range []string{"Please log in to continue", "Logged in", "Try the Mohali job fair", "s-42", "Goodbye"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	fake := &clienttest.Fake{
		ListSessionsFunc: func() (*models.SessionsResponse, error) {
			return &models.SessionsResponse{Success: true, Sessions: []models.SessionSummary{
				{SessionID: "a", Title: "Jobs in Mohali"},
				{SessionID: "b", Title: "Welding courses"},
			}}, nil
		},
	}
	co, out := newTestOrchestrator(t, fake, loggedInStore(t), "/history\n/delete 1\nn\n/delete 1\ny\n/quit\n")

	if err := co.Run(context.Background()); err != nil {
		t.Fatalf("Run err: %v", err)
	}

	if len(fake.DeletedSessions) != 1 || fake.DeletedSessions[0] != "a" {
		t.Fatalf("unexpected deletions: %v", fake.DeletedSessions)
	}
	remaining := co.Sessions.Sessions()
	if len(remaining) != 1 || remaining[0].SessionID != "b" {
		t.Fatalf("unexpected remaining sessions: %+v", remaining)
	}

	text := out.String()
	for _, want := range []string{"Jobs in Mohali", "Deletion cancelled", "Conversation deleted"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
}

func TestOpenAndNewChat(t *testing.T) {
	fake := &clienttest.Fake{
		GetSessionFunc: func(id string) (*models.SessionTranscript, error) {
			return &models.SessionTranscript{Messages: []models.TranscriptMessage{
				{Role: models.MessageRoleUser, Content: "old question"},
				{Role: models.MessageRoleAssistant, Content: "old answer"},
			}}, nil
		},
	}
	co, out := newTestOrchestrator(t, fake, loggedInStore(t), "/open abc\nfollow up\n/new\nfresh\n/quit\n")

	if err := co.Run(context.Background()); err != nil {
		t.Fatalf("Run err: %v", err)
	}

	reqs := fake.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 chat requests, got %d", len(reqs))
	}
	if reqs[0].SessionID != "abc" || len(reqs[0].History) != 2 {
		t.Fatalf("follow-up should continue the opened session: %+v", reqs[0])
	}
	if reqs[1].SessionID != "" || len(reqs[1].History) != 0 {
		t.Fatalf("message after /new should start over: %+v", reqs[1])
	}
	if !strings.Contains(out.String(), "old answer") {
		t.Fatalf("opened transcript not printed:\n%s", out.String())
	}
}

func TestLanguageSwitchAppliesToRequestsAndSpeech(t *testing.T) {
	fake := &clienttest.Fake{}
	store := loggedInStore(t)
	co, _ := newTestOrchestrator(t, fake, store, "/lang pa\nਸਤ ਸ੍ਰੀ ਅਕਾਲ\n/quit\n")

	if err := co.Run(context.Background()); err != nil {
		t.Fatalf("Run err: %v", err)
	}

	if saved, _, _ := store.Get(storage.KeyLanguage); saved != "pa" {
		t.Fatalf("language not persisted: %q", saved)
	}
	reqs := fake.Requests()
	if len(reqs) != 1 || reqs[0].Language != "pa" {
		t.Fatalf("request should carry the new language: %+v", reqs)
	}
	if got := co.Speech.Locale(); got != "pa-IN" {
		t.Fatalf("speech locale not updated: %q", got)
	}
}

func TestSpeechCommandsWithoutEngines(t *testing.T) {
	co, out := newTestOrchestrator(t, &clienttest.Fake{}, loggedInStore(t), "/listen\n/autospeak on\n/quit\n")

	if err := co.Run(context.Background()); err != nil {
		t.Fatalf("Run err: %v", err)
	}

	text := out.String()
	for _, want := range []string{"Speech recognition not supported", "Speech synthesis not supported"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
	if co.Speech.AutoSpeak() {
		t.Fatal("auto-speak should stay off without a synthesizer")
	}
}

func TestLogoutForgetsConversation(t *testing.T) {
	fake := &clienttest.Fake{
		ChatFunc: func(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
			return &models.ChatResponse{Response: "ok", SessionID: "s-1"}, nil
		},
	}
	store := loggedInStore(t)
	co, _ := newTestOrchestrator(t, fake, store, "hello\n/logout\n/quit\n")

	if err := co.Run(context.Background()); err != nil {
		t.Fatalf("Run err: %v", err)
	}

	if co.Auth.IsAuthenticated() {
		t.Fatal("still authenticated after /logout")
	}
	if len(co.Conversation.Messages()) != 0 || co.Conversation.GetSessionId() != "" {
		t.Fatal("conversation should be cleared on logout")
	}
	if _, ok, _ := store.Get(storage.KeyLastSession); ok {
		t.Fatal("last session should be forgotten on logout")
	}
}

func TestDeletingBoundSessionStartsOver(t *testing.T) {
	fake := &clienttest.Fake{
		ChatFunc: func(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
			return &models.ChatResponse{Response: "ok", SessionID: "s1"}, nil
		},
		ListSessionsFunc: func() (*models.SessionsResponse, error) {
			return &models.SessionsResponse{Success: true, Sessions: []models.SessionSummary{
				{SessionID: "s1", Title: "hello"},
			}}, nil
		},
	}
	store := loggedInStore(t)
	co, _ := newTestOrchestrator(t, fake, store, "hello\n/delete 1\ny\nagain\n/quit\n")

	if err := co.Run(context.Background()); err != nil {
		t.Fatalf("Run err: %v", err)
	}

	if len(fake.DeletedSessions) != 1 || fake.DeletedSessions[0] != "s1" {
		t.Fatalf("unexpected deletions: %v", fake.DeletedSessions)
	}
	reqs := fake.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 chat requests, got %d", len(reqs))
	}
	if reqs[1].SessionID != "" || len(reqs[1].History) != 0 {
		t.Fatalf("message after deleting the open session should start over: %+v", reqs[1])
	}
}

type textSynth struct{}

func (textSynth) Synthesize(ctx context.Context, text, locale string) ([]byte, error) {
	return []byte(text), nil
}

// endlessPlayer plays until its context is canceled.
type endlessPlayer struct{}

func (endlessPlayer) Play(ctx context.Context, audio []byte) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestLeavingChatStopsSpeech(t *testing.T) {
	for _, command := range []string{"/history", "/profile", "/edit"} {
		t.Run(command, func(t *testing.T) {
			stopped := make(chan speech.UtteranceState, 1)
			silenced := false
			turns := 0

			fake := &clienttest.Fake{
				ChatFunc: func(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
					turns++
					if turns > 1 {
						select {
						case state := <-stopped:
							silenced = state == speech.UtteranceCanceled
						case <-time.After(time.Second):
						}
					}
					return &models.ChatResponse{Response: "Visit the district employment bureau", SessionID: "s1"}, nil
				},
			}
			// The blank lines keep every field of the profile form.
			script := "hello\n/speak\n" + command + "\n\n\n\n\n\nnext\n/quit\n"
			co, _ := newTestOrchestratorWithSpeech(t, fake, loggedInStore(t), script, speech.Config{
				Synthesizer: textSynth{},
				Player:      endlessPlayer{},
			})
			co.Speech.OnUtterance(func(ev speech.UtteranceEvent) {
				select {
				case stopped <- ev.State:
				default:
				}
			})

			if err := co.Run(context.Background()); err != nil {
				t.Fatalf("Run err: %v", err)
			}
			if turns != 2 {
				t.Fatalf("expected 2 chat turns, got %d", turns)
			}
			if !silenced {
				t.Fatalf("%s should stop the reply being read aloud", command)
			}
		})
	}
}
