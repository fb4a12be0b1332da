package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleTranscript = `user:
<user_query>Fix bug</user_query>

A:
[Thinking] consider x
[Tool call] read_file path: a.ts
Done, fixed.
`

func writeTranscript(t *testing.T, cfg Config, projectPath, name, content string) {
	t.Helper()
	dir := filepath.Join(cfg.TranscriptsDir, DashTransform(projectPath))
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestTranscriptHarvest(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := Config{
		TranscriptsDir: t.TempDir(),
		Now:            func() time.Time { return fixed },
	}
	projectPath := "/Users/alex/myproj"
	writeTranscript(t, cfg, projectPath, "session1.txt", sampleTranscript)

	msgs, convs := NewTranscriptAdapter(cfg).Harvest(projectPath)

	if len(msgs) != 2 {
		t.Fatalf("Harvest() returned %d messages, want 2", len(msgs))
	}

	user := msgs[0]
	if user.Role != RoleUser {
		t.Errorf("msgs[0].Role = %v, want user", user.Role)
	}
	if user.Content != "Fix bug" {
		t.Errorf("msgs[0].Content = %q, want %q", user.Content, "Fix bug")
	}
	if user.ConversationID != "session1" {
		t.Errorf("msgs[0].ConversationID = %q, want session1", user.ConversationID)
	}

	assistant := msgs[1]
	if assistant.Role != RoleAssistant {
		t.Errorf("msgs[1].Role = %v, want assistant", assistant.Role)
	}
	if assistant.Content != "Done, fixed." {
		t.Errorf("msgs[1].Content = %q, want %q", assistant.Content, "Done, fixed.")
	}
	if assistant.Thinking != "consider x" {
		t.Errorf("msgs[1].Thinking = %q, want %q", assistant.Thinking, "consider x")
	}
	if len(assistant.ToolCalls) != 1 {
		t.Fatalf("msgs[1].ToolCalls = %v, want one call", assistant.ToolCalls)
	}
	call := assistant.ToolCalls[0]
	if call.Name != "read_file" {
		t.Errorf("tool call name = %q, want read_file", call.Name)
	}
	if call.Arguments["path"] != "a.ts" {
		t.Errorf("tool call arguments = %v, want path=a.ts", call.Arguments)
	}

	// Synthetic timestamps start an hour back and step one minute.
	wantFirst := fixed.Add(-time.Hour)
	if !user.Timestamp.Equal(wantFirst) {
		t.Errorf("msgs[0].Timestamp = %v, want %v", user.Timestamp, wantFirst)
	}
	if !assistant.Timestamp.Equal(wantFirst.Add(time.Minute)) {
		t.Errorf("msgs[1].Timestamp = %v, want %v", assistant.Timestamp, wantFirst.Add(time.Minute))
	}

	if len(convs) != 1 {
		t.Fatalf("Harvest() returned %d conversations, want 1", len(convs))
	}
	conv := convs[0]
	if conv.ID != "session1" {
		t.Errorf("conv.ID = %q, want session1", conv.ID)
	}
	if conv.Title != "Fix bug" {
		t.Errorf("conv.Title = %q, want %q", conv.Title, "Fix bug")
	}
	if conv.MessageCount != 2 {
		t.Errorf("conv.MessageCount = %d, want 2", conv.MessageCount)
	}
	if conv.StartTime.After(conv.EndTime) {
		t.Error("conv.StartTime must not be after conv.EndTime")
	}
}

func TestTranscriptAssistantFallbacks(t *testing.T) {
	tests := []struct {
		name        string
		lines       []string
		wantContent string
	}{
		{
			name:        "only bracketed lines",
			lines:       []string{"[Thinking] pondering", "[Tool result] ok"},
			wantContent: noResponsePlaceholder,
		},
		{
			name:        "content resumes after tool section",
			lines:       []string{"first answer line", "[Tool call] run_tests", "second line"},
			wantContent: "first answer line second line",
		},
	}

	adapter := NewTranscriptAdapter(Config{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := adapter.assistantMessage(transcriptBlock{role: RoleAssistant, lines: tt.lines})
			if !ok {
				t.Fatal("assistantMessage() returned no message")
			}
			if msg.Content != tt.wantContent {
				t.Errorf("content = %q, want %q", msg.Content, tt.wantContent)
			}
		})
	}
}

func TestTranscriptVisibleContentLineCap(t *testing.T) {
	var lines []string
	for i := 0; i < 15; i++ {
		lines = append(lines, "line")
	}
	got := visibleContent(lines)
	want := ""
	for i := 0; i < maxVisibleLines; i++ {
		if i > 0 {
			want += " "
		}
		want += "line"
	}
	if got != want {
		t.Errorf("visibleContent joined %d lines, want at most %d", len(got), maxVisibleLines)
	}
}

func TestTranscriptUserBlockWithoutTag(t *testing.T) {
	adapter := NewTranscriptAdapter(Config{})
	msg, ok := adapter.userMessage(transcriptBlock{
		role:  RoleUser,
		lines: []string{"just asking a question", "across two lines"},
	})
	if !ok {
		t.Fatal("userMessage() returned no message")
	}
	if msg.Content != "just asking a question\nacross two lines" {
		t.Errorf("content = %q", msg.Content)
	}
}

func TestTranscriptEmptyAndMissing(t *testing.T) {
	cfg := Config{TranscriptsDir: filepath.Join(t.TempDir(), "missing")}
	msgs, convs := NewTranscriptAdapter(cfg).Harvest("/Users/alex/myproj")
	if len(msgs) != 0 || len(convs) != 0 {
		t.Errorf("Harvest() against missing base = %d msgs, %d convs; want none", len(msgs), len(convs))
	}

	// A present but empty transcript file yields nothing.
	cfg = Config{TranscriptsDir: t.TempDir()}
	writeTranscript(t, cfg, "/Users/alex/myproj", "empty.txt", "")
	msgs, convs = NewTranscriptAdapter(cfg).Harvest("/Users/alex/myproj")
	if len(msgs) != 0 || len(convs) != 0 {
		t.Errorf("empty file produced %d msgs, %d convs; want none", len(msgs), len(convs))
	}
}
