package internal

import "time"

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Source identifies which storage format a record was ingested from.
type Source string

const (
	SourceTranscripts Source = "transcripts"
	SourceTracking    Source = "tracking"
	SourceChats       Source = "chats"
	SourceExports     Source = "exports"
	SourceArtifacts   Source = "artifacts"
)

// ToolCall represents a tool invocation parsed opportunistically from
// free text. Arguments may be nil when none were recognized.
type ToolCall struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

// Message is the canonical unit every adapter produces.
type Message struct {
	ID             string     `json:"id"`
	Timestamp      time.Time  `json:"timestamp"`
	Role           Role       `json:"role"`
	Content        string     `json:"content"`
	Thinking       string     `json:"thinking,omitempty"`
	Source         Source     `json:"source"`
	ProjectPath    string     `json:"projectPath,omitempty"`
	ConversationID string     `json:"conversationId,omitempty"`
	Model          string     `json:"model,omitempty"`
	ToolCalls      []ToolCall `json:"toolCalls,omitempty"`
	RelatedFiles   []string   `json:"relatedFiles,omitempty"`
}

// Conversation summarizes the messages one adapter contributed for a
// single conversation id.
type Conversation struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"messageCount"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	Source       Source    `json:"source"`
}

// DateRange spans the oldest and newest message timestamps in a result.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// HistoryResult is the aggregate returned by GetHistory. Messages are
// globally sorted ascending by timestamp; Conversations are the
// unordered union across sources.
type HistoryResult struct {
	Messages      []Message      `json:"messages"`
	Conversations []Conversation `json:"conversations"`
	TotalMessages int            `json:"totalMessages"`
	Sources       []Source       `json:"sources"`
	DateRange     *DateRange     `json:"dateRange"`
}

const (
	titleMaxLen      = 80
	placeholderTitle = "Untitled conversation"
)

// SummarizeConversation derives a Conversation from the messages an
// adapter extracted for one conversation id. The title comes from the
// first user message; start/end times from the first and last message.
// Returns a zero Conversation when msgs is empty.
func SummarizeConversation(id string, source Source, msgs []Message) Conversation {
	if len(msgs) == 0 {
		return Conversation{}
	}

	title := placeholderTitle
	for _, msg := range msgs {
		if msg.Role == RoleUser && msg.Content != "" {
			title = TruncateContent(msg.Content, titleMaxLen)
			break
		}
	}

	start := msgs[0].Timestamp
	end := msgs[0].Timestamp
	for _, msg := range msgs[1:] {
		if msg.Timestamp.Before(start) {
			start = msg.Timestamp
		}
		if msg.Timestamp.After(end) {
			end = msg.Timestamp
		}
	}

	return Conversation{
		ID:           id,
		Title:        title,
		MessageCount: len(msgs),
		StartTime:    start,
		EndTime:      end,
		Source:       source,
	}
}
