package services

import (
	"testing"
	"time"

	"pgrkam-assistant/work-flows/models"
)

func TestConversationHistory(t *testing.T) {
	chm := NewConversationHistoryManager()
	ts := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

	u := chm.AddMessage(models.MessageRoleUser, "hello", ts)
	a := chm.AddMessage(models.MessageRoleAssistant, "hi there", ts)
	if u.ID == "" || u.ID == a.ID {
		t.Fatalf("messages need distinct ids: %q %q", u.ID, a.ID)
	}

	history := chm.History()
	if len(history) != 2 || history[0].Role != models.MessageRoleUser || history[1].Content != "hi there" {
		t.Fatalf("unexpected history: %+v", history)
	}

	last, ok := chm.LastMessage(models.MessageRoleUser)
	if !ok || last.Content != "hello" {
		t.Fatalf("unexpected last user message: %+v", last)
	}

	stats := chm.GetConversationStats()
	if stats["total_messages"] != 2 || stats["user_messages"] != 1 || stats["bot_messages"] != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}

	snapshot := chm.GetConversationHistory()
	snapshot[0].Content = "changed"
	if chm.GetConversationHistory()[0].Content != "hello" {
		t.Fatal("GetConversationHistory must return a copy")
	}

	chm.ResetConversation()
	if chm.Len() != 0 {
		t.Fatal("reset should empty the transcript")
	}
	if _, ok := chm.LastMessage(models.MessageRoleAssistant); ok {
		t.Fatal("empty transcript has no last message")
	}
}
