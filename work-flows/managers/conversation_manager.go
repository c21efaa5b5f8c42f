package managers

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"pgrkam-assistant/utils"
	"pgrkam-assistant/work-flows/client"
	"pgrkam-assistant/work-flows/errs"
	"pgrkam-assistant/work-flows/models"
	"pgrkam-assistant/work-flows/services"
)

type ConversationState int

const (
	StateEmpty ConversationState = iota
	StateActive
	StateBound
)

func (s ConversationState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateBound:
		return "bound"
	default:
		return "empty"
	}
}

// FallbackErrorDetail is shown when a failed turn carries no server detail.
const FallbackErrorDetail = "Unable to get response."

// ErrConversationReset is returned by a send whose conversation was replaced
// (new chat or loaded session) before the reply arrived. The reply is dropped.
var ErrConversationReset = errs.New(errs.KindUnknown, "conversation was reset while waiting for a reply")

// ProfileSource supplies the profile attached to each chat request.
type ProfileSource interface {
	Details() models.ProfileDetails
}

// LanguageSource supplies the language tag attached to each chat request.
type LanguageSource interface {
	Language() models.Language
}

// ConversationManager owns the client-side view of the current chat session.
// At most one send is outstanding at a time.
type ConversationManager struct {
	mu sync.Mutex

	apiClient      client.Client
	historyManager *services.ConversationHistoryManager
	profile        ProfileSource
	language       LanguageSource
	now            func() time.Time

	sessionId  string
	state      ConversationState
	pending    bool
	generation uint64

	onAssistant []func(models.Message)
	onBound     []func(string)
	onReset     []func()
}

func NewConversationManager(apiClient client.Client, profile ProfileSource, language LanguageSource) *ConversationManager {
	return &ConversationManager{
		apiClient:      apiClient,
		historyManager: services.NewConversationHistoryManager(),
		profile:        profile,
		language:       language,
		now:            time.Now,
	}
}

// OnAssistantMessage registers fn for replies that arrive from a live send.
// Transcripts replayed by LoadSession do not trigger it.
func (m *ConversationManager) OnAssistantMessage(fn func(models.Message)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onAssistant = append(m.onAssistant, fn)
}

// OnSessionBound registers fn for the moment a server session id is adopted.
func (m *ConversationManager) OnSessionBound(fn func(sessionID string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onBound = append(m.onBound, fn)
}

// OnReset registers fn for NewChat and LoadSession.
func (m *ConversationManager) OnReset(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReset = append(m.onReset, fn)
}

// Activate marks an empty conversation as opened without a session hint.
func (m *ConversationManager) Activate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateEmpty {
		m.state = StateActive
	}
}

// SendMessage appends text as a user message and asks the backend for a
// reply. The user message stays even when the request fails; the failure is
// recorded as an assistant message and also returned.
func (m *ConversationManager) SendMessage(ctx context.Context, text string) (models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Message{}, errs.ErrEmptyMessage
	}

	m.mu.Lock()
	if m.pending {
		m.mu.Unlock()
		return models.Message{}, errs.ErrBusy
	}
	m.pending = true
	if m.state == StateEmpty {
		m.state = StateActive
	}
	gen := m.generation
	req := models.ChatRequest{
		Message:   text,
		History:   m.historyManager.History(),
		SessionID: m.sessionId,
	}
	m.historyManager.AddMessage(models.MessageRoleUser, text, m.now())
	m.mu.Unlock()

	if m.profile != nil {
		details := m.profile.Details()
		req.UserProfile = &details
	}
	req.Language = models.DefaultLanguage.String()
	if m.language != nil {
		req.Language = m.language.Language().String()
	}

	resp, err := m.apiClient.Chat(ctx, req)

	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		utils.Debug("dropping reply for a reset conversation", "generation", gen)
		return models.Message{}, ErrConversationReset
	}
	m.pending = false

	if err != nil {
		utils.Error(err, "chat request failed", "session_id", req.SessionID)
		msg := m.historyManager.AddMessage(models.MessageRoleAssistant, errorText(err), m.now())
		m.mu.Unlock()
		return msg, err
	}

	msg := m.historyManager.AddMessage(models.MessageRoleAssistant, resp.Response, m.now())
	var bound string
	if m.sessionId == "" && resp.SessionID != "" {
		m.sessionId = resp.SessionID
		m.state = StateBound
		bound = resp.SessionID
	}
	onAssistant := append([]func(models.Message){}, m.onAssistant...)
	onBound := append([]func(string){}, m.onBound...)
	m.mu.Unlock()

	if bound != "" {
		utils.Info("conversation bound to session", "session_id", bound)
		for _, fn := range onBound {
			fn(bound)
		}
	}
	for _, fn := range onAssistant {
		fn(msg)
	}
	return msg, nil
}

// LoadSession replaces the transcript with the server's copy of sessionID and
// binds the conversation to it. Message ids are derived from the session id
// and position, so loading the same session twice gives the same view.
func (m *ConversationManager) LoadSession(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return errs.Validation("session id is required")
	}

	transcript, err := m.apiClient.GetSession(ctx, sessionID)
	if err != nil {
		utils.Error(err, "failed to load session", "session_id", sessionID)
		return err
	}

	messages := make([]models.Message, 0, len(transcript.Messages))
	for idx, tm := range transcript.Messages {
		messages = append(messages, models.Message{
			ID:        sessionMessageID(sessionID, idx),
			Role:      tm.Role,
			Content:   tm.Content,
			Timestamp: models.ParseTimestamp(tm.Timestamp),
		})
	}

	m.mu.Lock()
	m.generation++
	m.pending = false
	m.historyManager.SetConversationHistory(messages)
	m.sessionId = sessionID
	m.state = StateBound
	onReset := append([]func(){}, m.onReset...)
	m.mu.Unlock()

	for _, fn := range onReset {
		fn()
	}
	return nil
}

// NewChat clears the transcript and session id. Nothing is sent until the
// next SendMessage, which will omit the session id.
func (m *ConversationManager) NewChat() {
	m.mu.Lock()
	m.generation++
	m.pending = false
	m.historyManager.ResetConversation()
	m.sessionId = ""
	m.state = StateEmpty
	onReset := append([]func(){}, m.onReset...)
	m.mu.Unlock()

	for _, fn := range onReset {
		fn()
	}
}

func (m *ConversationManager) Messages() []models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.historyManager.GetConversationHistory()
}

func (m *ConversationManager) GetSessionId() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionId
}

func (m *ConversationManager) State() ConversationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *ConversationManager) IsPending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

func (m *ConversationManager) LastAssistantMessage() (models.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.historyManager.LastMessage(models.MessageRoleAssistant)
}

func (m *ConversationManager) GetConversationStats() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.historyManager.GetConversationStats()
}

func sessionMessageID(sessionID string, idx int) string {
	return sessionID + "-" + strconv.Itoa(idx)
}

func errorText(err error) string {
	return "Error: " + errs.UserMessage(err, FallbackErrorDetail)
}
