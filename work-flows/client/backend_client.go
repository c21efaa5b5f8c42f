package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"pgrkam-assistant/utils"
	"pgrkam-assistant/work-flows/errs"
	"pgrkam-assistant/work-flows/models"

	"github.com/google/uuid"
)

const (
	DefaultBaseURL    = "http://localhost:8000"
	ContentTypeHeader = "application/json"
	ContentTypeForm   = "application/x-www-form-urlencoded"
	RequestIDHeader   = "X-Request-ID"
)

type backendClient struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
}

// NewBackendClient builds a Client against baseURL. A nil httpClient uses a
// zero http.Client so timeouts follow the transport defaults.
func NewBackendClient(baseURL string, httpClient *http.Client, tokens TokenSource) *backendClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &backendClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
		tokens:  tokens,
	}
}

func (bc *backendClient) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var resp models.LoginResponse
	if err := bc.do(ctx, http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()), ContentTypeForm, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, errs.New(errs.KindAuth, "login response did not include an access token")
	}
	return &resp, nil
}

func (bc *backendClient) Register(ctx context.Context, req models.RegisterRequest) error {
	return bc.doJSON(ctx, http.MethodPost, "/api/auth/register", req, nil)
}

func (bc *backendClient) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	return bc.doJSON(ctx, http.MethodPost, "/api/auth/change-password", req, nil)
}

func (bc *backendClient) ForgotPassword(ctx context.Context, email string) error {
	return bc.doJSON(ctx, http.MethodPost, "/api/auth/forgot-password", models.ForgotPasswordRequest{Email: email}, nil)
}

func (bc *backendClient) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	return bc.doJSON(ctx, http.MethodPost, "/api/auth/reset-password", req, nil)
}

func (bc *backendClient) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := bc.doJSON(ctx, http.MethodGet, "/api/profile", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (bc *backendClient) UpdateProfile(ctx context.Context, update models.ProfileUpdate) error {
	return bc.doJSON(ctx, http.MethodPut, "/api/profile", update, nil)
}

func (bc *backendClient) DeleteAccount(ctx context.Context) error {
	return bc.doJSON(ctx, http.MethodDelete, "/api/account", nil, nil)
}

func (bc *backendClient) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	if req.History == nil {
		req.History = []models.HistoryEntry{}
	}
	var resp models.ChatResponse
	if err := bc.doJSON(ctx, http.MethodPost, "/api/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (bc *backendClient) GetSession(ctx context.Context, sessionID string) (*models.SessionTranscript, error) {
	var transcript models.SessionTranscript
	if err := bc.doJSON(ctx, http.MethodGet, "/api/chat/session/"+url.PathEscape(sessionID), nil, &transcript); err != nil {
		return nil, err
	}
	return &transcript, nil
}

func (bc *backendClient) ListSessions(ctx context.Context) (*models.SessionsResponse, error) {
	var resp models.SessionsResponse
	if err := bc.doJSON(ctx, http.MethodGet, "/api/chat/sessions", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (bc *backendClient) DeleteSession(ctx context.Context, sessionID string) error {
	return bc.doJSON(ctx, http.MethodDelete, "/api/chat/session/"+url.PathEscape(sessionID), nil, nil)
}

func (bc *backendClient) LegacyHistory(ctx context.Context) ([]models.LegacyHistoryEntry, error) {
	var entries []models.LegacyHistoryEntry
	if err := bc.doJSON(ctx, http.MethodGet, "/api/history", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (bc *backendClient) TextToSpeech(ctx context.Context, text string) ([]byte, error) {
	jsonData, err := json.Marshal(models.TTSRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := bc.send(ctx, http.MethodPost, "/api/tts", bytes.NewReader(jsonData), ContentTypeHeader)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Transport(fmt.Errorf("failed to read audio: %w", err))
	}
	return audio, nil
}

func (bc *backendClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
		contentType = ContentTypeHeader
	}
	return bc.do(ctx, method, path, body, contentType, out)
}

func (bc *backendClient) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	resp, err := bc.send(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.Transport(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// send executes the request and converts non-2xx replies into *errs.Error.
// On success the caller owns resp.Body.
func (bc *backendClient) send(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, bc.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if bc.tokens != nil {
		if token := bc.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	resp, err := bc.client.Do(req)
	if err != nil {
		utils.Error(err, "backend request failed", "method", method, "path", path, "request_id", requestID)
		return nil, errs.Transport(fmt.Errorf("failed to execute request: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		detail := readDetail(resp.Body)
		utils.Warn("backend request rejected", "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID)
		return nil, errs.FromStatus(resp.StatusCode, detail)
	}

	utils.Debug("backend request ok", "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID)
	return resp, nil
}

// readDetail extracts the backend's "detail" field. Validation failures carry a
// list of {msg} objects instead of a string.
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}

	var errResp models.ErrorResponse
	if err := json.Unmarshal(data, &errResp); err != nil {
		return ""
	}

	switch detail := errResp.Detail.(type) {
	case string:
		return detail
	case []any:
		var msgs []string
		for _, item := range detail {
			if m, ok := item.(map[string]any); ok {
				if msg, ok := m["msg"].(string); ok && msg != "" {
					msgs = append(msgs, msg)
				}
			}
		}
		return strings.Join(msgs, "; ")
	default:
		return ""
	}
}
