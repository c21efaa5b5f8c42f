package services

import (
	"context"
	"sync"

	"pgrkam-assistant/utils"
	"pgrkam-assistant/work-flows/client"
	"pgrkam-assistant/work-flows/errs"
	"pgrkam-assistant/work-flows/models"
)

type ListState int

const (
	ListIdle ListState = iota
	ListLoading
	ListLoaded
)

var ErrNoPendingDelete = errs.New(errs.KindValidation, "no deletion awaiting confirmation")

// SessionList is the in-memory list of the user's past conversations.
// Deletion is two-step: RequestDelete, then ConfirmDelete or CancelDelete.
type SessionList struct {
	mu        sync.RWMutex
	apiClient client.Client
	state     ListState
	sessions  []models.SessionSummary
	pending   *models.SessionSummary
}

func NewSessionList(apiClient client.Client) *SessionList {
	return &SessionList{apiClient: apiClient}
}

// Fetch replaces the list with the backend's. On failure the list is left
// empty, matching a backend that reports no sessions.
func (sl *SessionList) Fetch(ctx context.Context) error {
	sl.mu.Lock()
	sl.state = ListLoading
	sl.mu.Unlock()

	resp, err := sl.apiClient.ListSessions(ctx)

	sl.mu.Lock()
	defer sl.mu.Unlock()
	sl.state = ListLoaded
	sl.pending = nil

	if err != nil {
		sl.sessions = nil
		return err
	}
	if !resp.Success || resp.Sessions == nil {
		sl.sessions = nil
		return nil
	}
	sl.sessions = append([]models.SessionSummary{}, resp.Sessions...)
	return nil
}

func (sl *SessionList) State() ListState {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return sl.state
}

// IsEmpty is true only once a fetch finished with no sessions.
func (sl *SessionList) IsEmpty() bool {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return sl.state == ListLoaded && len(sl.sessions) == 0
}

func (sl *SessionList) Sessions() []models.SessionSummary {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return append([]models.SessionSummary{}, sl.sessions...)
}

// At returns the session at a zero-based index.
func (sl *SessionList) At(index int) (models.SessionSummary, bool) {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	if index < 0 || index >= len(sl.sessions) {
		return models.SessionSummary{}, false
	}
	return sl.sessions[index], true
}

// RequestDelete marks sessionID as awaiting confirmation.
func (sl *SessionList) RequestDelete(sessionID string) (models.SessionSummary, error) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	for _, s := range sl.sessions {
		if s.SessionID == sessionID {
			pending := s
			sl.pending = &pending
			return s, nil
		}
	}
	return models.SessionSummary{}, errs.Validation("session %s is not in the list", sessionID)
}

func (sl *SessionList) PendingDelete() (models.SessionSummary, bool) {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	if sl.pending == nil {
		return models.SessionSummary{}, false
	}
	return *sl.pending, true
}

func (sl *SessionList) CancelDelete() {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	sl.pending = nil
}

// ConfirmDelete deletes the pending session. On success the entry is dropped
// locally without refetching; on failure the list is untouched.
func (sl *SessionList) ConfirmDelete(ctx context.Context) error {
	sl.mu.Lock()
	if sl.pending == nil {
		sl.mu.Unlock()
		return ErrNoPendingDelete
	}
	target := sl.pending.SessionID
	sl.pending = nil
	sl.mu.Unlock()

	if err := sl.apiClient.DeleteSession(ctx, target); err != nil {
		utils.Error(err, "failed to delete session", "session_id", target)
		return err
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()
	kept := sl.sessions[:0:0]
	for _, s := range sl.sessions {
		if s.SessionID != target {
			kept = append(kept, s)
		}
	}
	sl.sessions = kept
	return nil
}
