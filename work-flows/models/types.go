package models

import (
	"strings"
	"time"
)

// Message roles

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

func (r MessageRole) String() string {
	return string(r)
}

// Message is one entry of the local transcript.
type Message struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp,omitzero"`
}

// HistoryEntry is the role/content pair the backend expects as prior context.
type HistoryEntry struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

type ChatRequest struct {
	Message     string          `json:"message"`
	History     []HistoryEntry  `json:"history"`
	SessionID   string          `json:"session_id,omitempty"`
	UserProfile *ProfileDetails `json:"user_profile"`
	Language    string          `json:"language"`
}

type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

type TranscriptMessage struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp string      `json:"timestamp"`
}

type SessionTranscript struct {
	SessionID string              `json:"session_id,omitempty"`
	Messages  []TranscriptMessage `json:"messages"`
}

// SessionSummary is one row of the history list.
type SessionSummary struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
	Preview   string `json:"preview"`
	UpdatedAt string `json:"updated_at"`
}

func (s SessionSummary) UpdatedTime() time.Time {
	return ParseTimestamp(s.UpdatedAt)
}

type SessionsResponse struct {
	Success  bool             `json:"success"`
	Sessions []SessionSummary `json:"sessions"`
}

type LegacyHistoryEntry struct {
	UserMessage       string `json:"user_message"`
	AssistantResponse string `json:"assistant_response"`
	Timestamp         string `json:"timestamp"`
}

// Auth

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Profile

type ProfileDetails struct {
	District      string   `json:"district"`
	Education     string   `json:"education"`
	Skills        []string `json:"skills"`
	CareerSummary string   `json:"careerSummary"`
}

type UserProfile struct {
	Name    string         `json:"name"`
	Email   string         `json:"email"`
	Profile ProfileDetails `json:"profile"`
}

// ProfileUpdate is sent as a partial document; empty fields are left out.
type ProfileUpdate struct {
	Name    string          `json:"name,omitempty"`
	Profile *ProfileDetails `json:"profile,omitempty"`
}

type TTSRequest struct {
	Text string `json:"text"`
}

type ErrorResponse struct {
	Detail any `json:"detail"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp accepts the ISO-8601 variants the backend emits. Values
// without a zone are taken as UTC. Unparseable input yields the zero time.
func ParseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
