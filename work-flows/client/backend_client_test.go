package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"pgrkam-assistant/work-flows/errs"
	"pgrkam-assistant/work-flows/models"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, token string, handler http.HandlerFunc) *backendClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewBackendClient(srv.URL, srv.Client(), staticToken(token))
}

func TestLoginSendsFormEncodedCredentials(t *testing.T) {
	bc := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != ContentTypeForm {
			t.Errorf("unexpected content type: %s", ct)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not carry a bearer token when none is set")
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm err: %v", err)
		}
		if r.PostForm.Get("username") != "asha@example.com" || r.PostForm.Get("password") != "secret1" {
			t.Errorf("unexpected form: %v", r.PostForm)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "jwt-token", "token_type": "bearer"})
	})

	resp, err := bc.Login(context.Background(), "asha@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login err: %v", err)
	}
	if resp.AccessToken != "jwt-token" {
		t.Fatalf("unexpected token: %s", resp.AccessToken)
	}
}

func TestLoginUnauthorizedIsAuthError(t *testing.T) {
	bc := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"Invalid email or password"}`)
	})

	_, err := bc.Login(context.Background(), "a@b.c", "wrong")
	if !errs.Is(err, errs.KindAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if got := errs.UserMessage(err, "Login failed"); got != "Invalid email or password" {
		t.Fatalf("unexpected detail: %q", got)
	}
}

func TestChatCarriesTokenAndOmitsEmptySession(t *testing.T) {
	bc := newTestClient(t, "abc", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer abc" {
			t.Errorf("unexpected auth header: %q", got)
		}
		if r.Header.Get(RequestIDHeader) == "" {
			t.Error("missing request id")
		}

		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("decode err: %v", err)
		}
		if _, ok := raw["session_id"]; ok {
			t.Errorf("session_id should be omitted, got %v", raw["session_id"])
		}
		if hist, ok := raw["history"].([]any); !ok || len(hist) != 0 {
			t.Errorf("history should be an empty list, got %v", raw["history"])
		}
		if raw["language"] != "hi" {
			t.Errorf("unexpected language: %v", raw["language"])
		}
		_ = json.NewEncoder(w).Encode(models.ChatResponse{Response: "namaste", SessionID: "s-1"})
	})

	resp, err := bc.Chat(context.Background(), models.ChatRequest{
		Message:     "hello",
		UserProfile: &models.ProfileDetails{},
		Language:    "hi",
	})
	if err != nil {
		t.Fatalf("Chat err: %v", err)
	}
	if resp.Response != "namaste" || resp.SessionID != "s-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestServerErrorDetailList(t *testing.T) {
	bc := newTestClient(t, "abc", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"detail":[{"msg":"field required"},{"msg":"value too short"}]}`)
	})

	err := bc.UpdateProfile(context.Background(), models.ProfileUpdate{Name: "x"})
	if !errs.Is(err, errs.KindNetwork) {
		t.Fatalf("expected network/server error, got %v", err)
	}
	if errs.StatusOf(err) != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status: %d", errs.StatusOf(err))
	}
	if got := errs.UserMessage(err, ""); got != "field required; value too short" {
		t.Fatalf("unexpected detail: %q", got)
	}
}

func TestSessionEndpoints(t *testing.T) {
	bc := newTestClient(t, "abc", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/chat/sessions":
			_, _ = io.WriteString(w, `{"success":true,"sessions":[{"session_id":"a","title":"Jobs","preview":"hi","updated_at":"2024-05-01T10:00:00"}]}`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/chat/session/a":
			_, _ = io.WriteString(w, `{"messages":[{"role":"user","content":"hi","timestamp":"2024-05-01T10:00:00"}]}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/chat/session/a":
			_, _ = io.WriteString(w, `{"success":true,"message":"Session deleted"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail":"Session not found"}`)
		}
	})
	ctx := context.Background()

	list, err := bc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions err: %v", err)
	}
	if !list.Success || len(list.Sessions) != 1 || list.Sessions[0].UpdatedTime().IsZero() {
		t.Fatalf("unexpected sessions: %+v", list)
	}

	transcript, err := bc.GetSession(ctx, "a")
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	if len(transcript.Messages) != 1 || transcript.Messages[0].Content != "hi" {
		t.Fatalf("unexpected transcript: %+v", transcript)
	}

	if err := bc.DeleteSession(ctx, "a"); err != nil {
		t.Fatalf("DeleteSession err: %v", err)
	}

	_, err = bc.GetSession(ctx, "missing")
	if errs.StatusOf(err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestTextToSpeechReturnsAudioBytes(t *testing.T) {
	bc := newTestClient(t, "abc", func(w http.ResponseWriter, r *http.Request) {
		var req models.TTSRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Text != "hello" {
			t.Errorf("unexpected text: %q", req.Text)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte{0x49, 0x44, 0x33})
	})

	audio, err := bc.TextToSpeech(context.Background(), "hello")
	if err != nil {
		t.Fatalf("TextToSpeech err: %v", err)
	}
	if len(audio) != 3 {
		t.Fatalf("unexpected audio length: %d", len(audio))
	}
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	bc := NewBackendClient(url, nil, staticToken(""))
	_, err := bc.GetProfile(context.Background())
	if !errs.Is(err, errs.KindNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if errs.StatusOf(err) != 0 {
		t.Fatalf("transport errors carry no status, got %d", errs.StatusOf(err))
	}
}
