// Package clienttest provides an in-memory client.Client for tests.
package clienttest

import (
	"context"
	"sync"

	"pgrkam-assistant/work-flows/client"
	"pgrkam-assistant/work-flows/models"
)

var _ client.Client = (*Fake)(nil)

// Fake implements client.Client. Each hook, when set, decides the result of
// the matching call; unset hooks succeed with zero values. Every chat request
// and deleted session id is recorded.
type Fake struct {
	mu sync.Mutex

	LoginFunc          func(email, password string) (*models.LoginResponse, error)
	RegisterFunc       func(req models.RegisterRequest) error
	ChangePasswordFunc func(req models.ChangePasswordRequest) error
	ForgotPasswordFunc func(email string) error
	ResetPasswordFunc  func(req models.ResetPasswordRequest) error
	GetProfileFunc     func() (*models.UserProfile, error)
	UpdateProfileFunc  func(update models.ProfileUpdate) error
	DeleteAccountFunc  func() error
	ChatFunc           func(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
	GetSessionFunc     func(sessionID string) (*models.SessionTranscript, error)
	ListSessionsFunc   func() (*models.SessionsResponse, error)
	DeleteSessionFunc  func(sessionID string) error
	LegacyHistoryFunc  func() ([]models.LegacyHistoryEntry, error)
	TextToSpeechFunc   func(text string) ([]byte, error)

	ChatRequests    []models.ChatRequest
	DeletedSessions []string
	ProfileUpdates  []models.ProfileUpdate
}

func (f *Fake) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	if f.LoginFunc != nil {
		return f.LoginFunc(email, password)
	}
	return &models.LoginResponse{AccessToken: "token"}, nil
}

func (f *Fake) Register(ctx context.Context, req models.RegisterRequest) error {
	if f.RegisterFunc != nil {
		return f.RegisterFunc(req)
	}
	return nil
}

func (f *Fake) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	if f.ChangePasswordFunc != nil {
		return f.ChangePasswordFunc(req)
	}
	return nil
}

func (f *Fake) ForgotPassword(ctx context.Context, email string) error {
	if f.ForgotPasswordFunc != nil {
		return f.ForgotPasswordFunc(email)
	}
	return nil
}

func (f *Fake) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if f.ResetPasswordFunc != nil {
		return f.ResetPasswordFunc(req)
	}
	return nil
}

func (f *Fake) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	if f.GetProfileFunc != nil {
		return f.GetProfileFunc()
	}
	return &models.UserProfile{}, nil
}

func (f *Fake) UpdateProfile(ctx context.Context, update models.ProfileUpdate) error {
	f.mu.Lock()
	f.ProfileUpdates = append(f.ProfileUpdates, update)
	f.mu.Unlock()
	if f.UpdateProfileFunc != nil {
		return f.UpdateProfileFunc(update)
	}
	return nil
}

func (f *Fake) DeleteAccount(ctx context.Context) error {
	if f.DeleteAccountFunc != nil {
		return f.DeleteAccountFunc()
	}
	return nil
}

func (f *Fake) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	f.mu.Lock()
	f.ChatRequests = append(f.ChatRequests, req)
	f.mu.Unlock()
	if f.ChatFunc != nil {
		return f.ChatFunc(ctx, req)
	}
	return &models.ChatResponse{Response: "ok"}, nil
}

func (f *Fake) GetSession(ctx context.Context, sessionID string) (*models.SessionTranscript, error) {
	if f.GetSessionFunc != nil {
		return f.GetSessionFunc(sessionID)
	}
	return &models.SessionTranscript{}, nil
}

func (f *Fake) ListSessions(ctx context.Context) (*models.SessionsResponse, error) {
	if f.ListSessionsFunc != nil {
		return f.ListSessionsFunc()
	}
	return &models.SessionsResponse{Success: true}, nil
}

func (f *Fake) DeleteSession(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	f.DeletedSessions = append(f.DeletedSessions, sessionID)
	f.mu.Unlock()
	if f.DeleteSessionFunc != nil {
		return f.DeleteSessionFunc(sessionID)
	}
	return nil
}

func (f *Fake) LegacyHistory(ctx context.Context) ([]models.LegacyHistoryEntry, error) {
	if f.LegacyHistoryFunc != nil {
		return f.LegacyHistoryFunc()
	}
	return nil, nil
}

func (f *Fake) TextToSpeech(ctx context.Context, text string) ([]byte, error) {
	if f.TextToSpeechFunc != nil {
		return f.TextToSpeechFunc(text)
	}
	return []byte(text), nil
}

// Requests returns a copy of the recorded chat requests.
func (f *Fake) Requests() []models.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ChatRequest{}, f.ChatRequests...)
}
