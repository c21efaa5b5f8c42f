package client

import (
	"context"

	"pgrkam-assistant/work-flows/models"
)

// Client is the assistant's backend REST API.
type Client interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) error
	ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error

	GetProfile(ctx context.Context) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) error
	DeleteAccount(ctx context.Context) error

	Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
	GetSession(ctx context.Context, sessionID string) (*models.SessionTranscript, error)
	ListSessions(ctx context.Context) (*models.SessionsResponse, error)
	DeleteSession(ctx context.Context, sessionID string) error
	LegacyHistory(ctx context.Context) ([]models.LegacyHistoryEntry, error)

	TextToSpeech(ctx context.Context, text string) ([]byte, error)
}

// TokenSource supplies the bearer token attached to outgoing requests.
// An empty token means the request is sent unauthenticated.
type TokenSource interface {
	Token() string
}
