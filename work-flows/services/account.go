package services

import (
	"context"
	"strings"

	"pgrkam-assistant/work-flows/client"
	"pgrkam-assistant/work-flows/errs"
	"pgrkam-assistant/work-flows/models"
)

const MinPasswordLength = 6

var (
	ErrPasswordMismatch = errs.New(errs.KindValidation, "new passwords do not match")
	ErrPasswordTooShort = errs.New(errs.KindValidation, "password must be at least 6 characters long")
	ErrMissingFields    = errs.New(errs.KindValidation, "all fields are required")
)

// ValidateNewPassword checks a new password and its confirmation.
func ValidateNewPassword(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	if len([]rune(password)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// AccountService covers the unauthenticated account flows.
type AccountService struct {
	apiClient client.Client
	auth      *AuthState
}

func NewAccountService(apiClient client.Client, auth *AuthState) *AccountService {
	return &AccountService{
		apiClient: apiClient,
		auth:      auth,
	}
}

func (s *AccountService) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrMissingFields
	}

	resp, err := s.apiClient.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.auth.SetToken(resp.AccessToken)
}

func (s *AccountService) Register(ctx context.Context, name, email, password, confirm string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return ErrMissingFields
	}
	if err := ValidateNewPassword(password, confirm); err != nil {
		return err
	}

	return s.apiClient.Register(ctx, models.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
	})
}

func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrMissingFields
	}
	return s.apiClient.ForgotPassword(ctx, email)
}

func (s *AccountService) ResetPassword(ctx context.Context, token, password, confirm string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrMissingFields
	}
	if err := ValidateNewPassword(password, confirm); err != nil {
		return err
	}
	return s.apiClient.ResetPassword(ctx, models.ResetPasswordRequest{
		Token:       token,
		NewPassword: password,
	})
}

func (s *AccountService) Logout() error {
	return s.auth.Clear()
}
