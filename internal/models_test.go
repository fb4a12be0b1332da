package internal

import (
	"strings"
	"testing"
	"time"
)

func TestSummarizeConversation(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	msgs := []Message{
		{Role: RoleSystem, Content: "context preamble", Timestamp: t0.Add(time.Minute)},
		{Role: RoleUser, Content: "Rename the config package", Timestamp: t0},
		{Role: RoleAssistant, Content: "Done.", Timestamp: t0.Add(2 * time.Minute)},
	}

	conv := SummarizeConversation("c1", SourceTranscripts, msgs)
	if conv.ID != "c1" || conv.Source != SourceTranscripts {
		t.Errorf("conv = %+v", conv)
	}
	if conv.Title != "Rename the config package" {
		t.Errorf("Title = %q, want the first user message", conv.Title)
	}
	if conv.MessageCount != 3 {
		t.Errorf("MessageCount = %d, want 3", conv.MessageCount)
	}
	if !conv.StartTime.Equal(t0) {
		t.Errorf("StartTime = %v, want earliest timestamp", conv.StartTime)
	}
	if !conv.EndTime.Equal(t0.Add(2 * time.Minute)) {
		t.Errorf("EndTime = %v, want latest timestamp", conv.EndTime)
	}
}

func TestSummarizeConversationNoUserMessage(t *testing.T) {
	msgs := []Message{{Role: RoleAssistant, Content: "only me here"}}
	conv := SummarizeConversation("c2", SourceArtifacts, msgs)
	if conv.Title != placeholderTitle {
		t.Errorf("Title = %q, want placeholder", conv.Title)
	}
}

func TestSummarizeConversationLongTitle(t *testing.T) {
	msgs := []Message{{Role: RoleUser, Content: strings.Repeat("a", 200)}}
	conv := SummarizeConversation("c3", SourceChats, msgs)
	if len([]rune(conv.Title)) != titleMaxLen+3 {
		t.Errorf("Title length = %d, want truncated to %d plus marker", len([]rune(conv.Title)), titleMaxLen)
	}
}

func TestSummarizeConversationEmpty(t *testing.T) {
	conv := SummarizeConversation("c4", SourceChats, nil)
	if conv.ID != "" || conv.MessageCount != 0 {
		t.Errorf("empty input should yield a zero Conversation, got %+v", conv)
	}
}
