package managers

import (
	"context"
	"errors"
	"testing"
	"time"

	"pgrkam-assistant/work-flows/client/clienttest"
	"pgrkam-assistant/work-flows/errs"
	"pgrkam-assistant/work-flows/models"
)

type staticProfile models.ProfileDetails

func (p staticProfile) Details() models.ProfileDetails { return models.ProfileDetails(p) }

type staticLanguage models.Language

func (l staticLanguage) Language() models.Language { return models.Language(l) }

func newManager(fake *clienttest.Fake) *ConversationManager {
	m := NewConversationManager(fake,
		staticProfile{District: "Ludhiana", Skills: []string{"Welding"}},
		staticLanguage(models.Language("hi")))
	m.now = func() time.Time { return time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC) }
	return m
}

func TestSendMessageTurnCounts(t *testing.T) {
	calls := 0
	fake := &clienttest.Fake{
		ChatFunc: func(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
			calls++
			if calls == 2 {
				return nil, errs.FromStatus(500, "Model overloaded")
			}
			return &models.ChatResponse{Response: "reply", SessionID: "s-1"}, nil
		},
	}
	m := newManager(fake)
	ctx := context.Background()

	if _, err := m.SendMessage(ctx, "find jobs"); err != nil {
		t.Fatalf("first send err: %v", err)
	}
	if got := len(m.Messages()); got != 2 {
		t.Fatalf("after successful turn expected 2 messages, got %d", got)
	}

	msg, err := m.SendMessage(ctx, "again")
	if err == nil {
		t.Fatal("expected failed turn to return the error")
	}
	if got := len(m.Messages()); got != 4 {
		t.Fatalf("failed turn should keep the user message and add an error reply, got %d", got)
	}
	if msg.Role != models.MessageRoleAssistant || msg.Content != "Error: Model overloaded" {
		t.Fatalf("unexpected error message: %+v", msg)
	}
	if m.Messages()[2].Content != "again" {
		t.Fatal("optimistic user message should not be rolled back")
	}
	if m.IsPending() {
		t.Fatal("pending flag should clear after a failed turn")
	}

	if _, err := m.SendMessage(ctx, "third"); err != nil {
		t.Fatalf("conversation should stay usable after a failure: %v", err)
	}
	if got := len(m.Messages()); got != 6 {
		t.Fatalf("expected 6 messages, got %d", got)
	}
}

func TestSendMessageFallbackErrorText(t *testing.T) {
	fake := &clienttest.Fake{
		ChatFunc: func(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
			return nil, errs.Transport(errors.New("connection refused"))
		},
	}
	m := newManager(fake)

	msg, _ := m.SendMessage(context.Background(), "hello")
	if msg.Content != "Error: "+FallbackErrorDetail {
		t.Fatalf("unexpected fallback: %q", msg.Content)
	}
}

func TestSendMessageRejectsEmpty(t *testing.T) {
	fake := &clienttest.Fake{}
	m := newManager(fake)

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := m.SendMessage(context.Background(), text); !errors.Is(err, errs.ErrEmptyMessage) {
			t.Fatalf("SendMessage(%q): expected empty message error, got %v", text, err)
		}
	}
	if len(fake.Requests()) != 0 || len(m.Messages()) != 0 {
		t.Fatal("empty input must not reach the backend or the transcript")
	}
	if m.State() != StateEmpty {
		t.Fatalf("expected empty state, got %v", m.State())
	}
}

func TestSendMessageRejectsConcurrentSend(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	fake := &clienttest.Fake{
		ChatFunc: func(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
			close(entered)
			<-release
			return &models.ChatResponse{Response: "done"}, nil
		},
	}
	m := newManager(fake)

	done := make(chan error)
	go func() {
		_, err := m.SendMessage(context.Background(), "first")
		done <- err
	}()
	<-entered

	if !m.IsPending() {
		t.Fatal("expected pending send")
	}
	if _, err := m.SendMessage(context.Background(), "second"); !errors.Is(err, errs.ErrBusy) {
		t.Fatalf("expected busy error, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first send err: %v", err)
	}
	if got := len(fake.Requests()); got != 1 {
		t.Fatalf("expected one backend call, got %d", got)
	}
}

func TestSendMessageRequestShape(t *testing.T) {
	fake := &clienttest.Fake{
		ChatFunc: func(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
			return &models.ChatResponse{Response: "r:" + req.Message, SessionID: "s-1"}, nil
		},
	}
	m := newManager(fake)
	ctx := context.Background()

	_, _ = m.SendMessage(ctx, "one")
	_, _ = m.SendMessage(ctx, "two")

	reqs := fake.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}

	first := reqs[0]
	if first.SessionID != "" {
		t.Fatalf("first request should omit session id, got %q", first.SessionID)
	}
	if len(first.History) != 0 {
		t.Fatalf("first request history should be empty, got %+v", first.History)
	}
	if first.Language != "hi" || first.UserProfile == nil || first.UserProfile.District != "Ludhiana" {
		t.Fatalf("missing context on request: %+v", first)
	}

	second := reqs[1]
	if second.SessionID != "s-1" {
		t.Fatalf("second request should reuse session id, got %q", second.SessionID)
	}
	want := []models.HistoryEntry{
		{Role: models.MessageRoleUser, Content: "one"},
		{Role: models.MessageRoleAssistant, Content: "r:one"},
	}
	if len(second.History) != len(want) {
		t.Fatalf("history should reflect state before the turn: %+v", second.History)
	}
	for i := range want {
		if second.History[i] != want[i] {
			t.Fatalf("history[%d] = %+v, want %+v", i, second.History[i], want[i])
		}
	}
}

func TestSessionIDAdoptedOnce(t *testing.T) {
	ids := []string{"", "s-1", "s-2"}
	calls := 0
	fake := &clienttest.Fake{
		ChatFunc: func(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
			id := ids[calls]
			calls++
			return &models.ChatResponse{Response: "ok", SessionID: id}, nil
		},
	}
	m := newManager(fake)
	var bound []string
	m.OnSessionBound(func(id string) { bound = append(bound, id) })
	ctx := context.Background()

	_, _ = m.SendMessage(ctx, "a")
	if m.State() != StateActive || m.GetSessionId() != "" {
		t.Fatalf("reply without id should stay active, got %v %q", m.State(), m.GetSessionId())
	}

	_, _ = m.SendMessage(ctx, "b")
	if m.State() != StateBound || m.GetSessionId() != "s-1" {
		t.Fatalf("expected bound to s-1, got %v %q", m.State(), m.GetSessionId())
	}

	_, _ = m.SendMessage(ctx, "c")
	if m.GetSessionId() != "s-1" {
		t.Fatalf("session id must not change once set, got %q", m.GetSessionId())
	}
	if len(bound) != 1 || bound[0] != "s-1" {
		t.Fatalf("navigator should be told exactly once: %v", bound)
	}
}

func TestNewChatResets(t *testing.T) {
	fake := &clienttest.Fake{
		ChatFunc: func(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
			return &models.ChatResponse{Response: "ok", SessionID: "s-9"}, nil
		},
	}
	m := newManager(fake)
	resets := 0
	m.OnReset(func() { resets++ })
	ctx := context.Background()

	_, _ = m.SendMessage(ctx, "hello")
	m.NewChat()

	if len(m.Messages()) != 0 || m.GetSessionId() != "" || m.State() != StateEmpty {
		t.Fatalf("NewChat should clear everything: %d %q %v", len(m.Messages()), m.GetSessionId(), m.State())
	}
	if resets != 1 {
		t.Fatalf("expected one reset notification, got %d", resets)
	}

	_, _ = m.SendMessage(ctx, "fresh")
	reqs := fake.Requests()
	if last := reqs[len(reqs)-1]; last.SessionID != "" || len(last.History) != 0 {
		t.Fatalf("first send after NewChat should start over: %+v", last)
	}

	m.NewChat()
	m.NewChat()
	if len(m.Messages()) != 0 || m.State() != StateEmpty {
		t.Fatal("NewChat on an empty conversation should stay empty")
	}
}

func TestLoadSessionIsIdempotent(t *testing.T) {
	fake := &clienttest.Fake{
		GetSessionFunc: func(id string) (*models.SessionTranscript, error) {
			return &models.SessionTranscript{Messages: []models.TranscriptMessage{
				{Role: models.MessageRoleUser, Content: "jobs?", Timestamp: "2024-05-01T10:00:00"},
				{Role: models.MessageRoleAssistant, Content: "here", Timestamp: "2024-05-01T10:00:05Z"},
			}}, nil
		},
	}
	m := newManager(fake)
	replies := 0
	m.OnAssistantMessage(func(models.Message) { replies++ })
	ctx := context.Background()

	if err := m.LoadSession(ctx, "abc"); err != nil {
		t.Fatalf("LoadSession err: %v", err)
	}
	first := m.Messages()

	if err := m.LoadSession(ctx, "abc"); err != nil {
		t.Fatalf("LoadSession err: %v", err)
	}
	second := m.Messages()

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("unexpected lengths %d %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("message %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
	if first[0].ID != "abc-0" || first[1].ID != "abc-1" {
		t.Fatalf("unexpected ids: %q %q", first[0].ID, first[1].ID)
	}
	if first[0].Timestamp.IsZero() {
		t.Fatal("timestamp should be parsed")
	}
	if m.State() != StateBound || m.GetSessionId() != "abc" {
		t.Fatalf("expected bound to abc, got %v %q", m.State(), m.GetSessionId())
	}
	if replies != 0 {
		t.Fatal("replayed transcripts must not count as new assistant messages")
	}
}

func TestLoadSessionFailureKeepsState(t *testing.T) {
	fake := &clienttest.Fake{
		ChatFunc: func(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
			return &models.ChatResponse{Response: "ok", SessionID: "s-1"}, nil
		},
		GetSessionFunc: func(id string) (*models.SessionTranscript, error) {
			return nil, errs.FromStatus(404, "Session not found")
		},
	}
	m := newManager(fake)
	ctx := context.Background()
	_, _ = m.SendMessage(ctx, "hello")

	if err := m.LoadSession(ctx, "missing"); errs.StatusOf(err) != 404 {
		t.Fatalf("expected 404, got %v", err)
	}
	if m.GetSessionId() != "s-1" || len(m.Messages()) != 2 {
		t.Fatal("failed load should leave the conversation alone")
	}
}

func TestReplyAfterResetIsDropped(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	fake := &clienttest.Fake{
		ChatFunc: func(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
			close(entered)
			<-release
			return &models.ChatResponse{Response: "late", SessionID: "old"}, nil
		},
	}
	m := newManager(fake)

	done := make(chan error)
	go func() {
		_, err := m.SendMessage(context.Background(), "slow")
		done <- err
	}()
	<-entered
	m.NewChat()
	close(release)

	if err := <-done; !errors.Is(err, ErrConversationReset) {
		t.Fatalf("expected reset error, got %v", err)
	}
	if len(m.Messages()) != 0 || m.GetSessionId() != "" {
		t.Fatal("late reply leaked into the new conversation")
	}
}

func TestAssistantListenerFiresForLiveReplies(t *testing.T) {
	fake := &clienttest.Fake{}
	m := newManager(fake)
	var got []string
	m.OnAssistantMessage(func(msg models.Message) { got = append(got, msg.Content) })

	_, _ = m.SendMessage(context.Background(), "hi")
	if len(got) != 1 || got[0] != "ok" {
		t.Fatalf("unexpected notifications: %v", got)
	}

	last, ok := m.LastAssistantMessage()
	if !ok || last.Content != "ok" {
		t.Fatalf("unexpected last assistant message: %+v", last)
	}
}
