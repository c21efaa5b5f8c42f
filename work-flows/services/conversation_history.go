package services

import (
	"time"

	"pgrkam-assistant/work-flows/models"

	"github.com/google/uuid"
)

// ConversationHistoryManager is the ordered, append-only transcript of the
// current conversation. It is not safe for concurrent use; the owning
// manager serializes access.
type ConversationHistoryManager struct {
	conversationHistory []models.Message
}

func NewConversationHistoryManager() *ConversationHistoryManager {
	return &ConversationHistoryManager{
		conversationHistory: []models.Message{},
	}
}

// AddMessage appends a message with a fresh id and returns it.
func (chm *ConversationHistoryManager) AddMessage(role models.MessageRole, content string, timestamp time.Time) models.Message {
	msg := models.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: timestamp,
	}
	chm.conversationHistory = append(chm.conversationHistory, msg)
	return msg
}

// LastMessage returns the most recent message of the given role.
func (chm *ConversationHistoryManager) LastMessage(role models.MessageRole) (models.Message, bool) {
	for i := len(chm.conversationHistory) - 1; i >= 0; i-- {
		if chm.conversationHistory[i].Role == role {
			return chm.conversationHistory[i], true
		}
	}
	return models.Message{}, false
}

func (chm *ConversationHistoryManager) Len() int {
	return len(chm.conversationHistory)
}

// History returns the role/content pairs sent to the backend as context.
func (chm *ConversationHistoryManager) History() []models.HistoryEntry {
	entries := make([]models.HistoryEntry, 0, len(chm.conversationHistory))
	for _, msg := range chm.conversationHistory {
		entries = append(entries, models.HistoryEntry{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return entries
}

func (chm *ConversationHistoryManager) ResetConversation() {
	chm.conversationHistory = []models.Message{}
}

// GetConversationHistory returns a copy of the transcript.
func (chm *ConversationHistoryManager) GetConversationHistory() []models.Message {
	return append([]models.Message{}, chm.conversationHistory...)
}

func (chm *ConversationHistoryManager) SetConversationHistory(history []models.Message) {
	chm.conversationHistory = append([]models.Message{}, history...)
}

func (chm *ConversationHistoryManager) GetConversationStats() map[string]int {
	return map[string]int{
		"total_messages": len(chm.conversationHistory),
		"user_messages":  chm.countMessagesByRole(models.MessageRoleUser),
		"bot_messages":   chm.countMessagesByRole(models.MessageRoleAssistant),
	}
}

func (chm *ConversationHistoryManager) countMessagesByRole(role models.MessageRole) int {
	count := 0
	for _, msg := range chm.conversationHistory {
		if msg.Role == role {
			count++
		}
	}
	return count
}
