package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// TranscriptAdapter parses line-oriented plain-text transcripts, one
// conversation per file. The format carries no real timestamps, so
// every message receives a synthetic strictly-increasing timestamp
// starting an hour before now and stepping one minute per message.
type TranscriptAdapter struct {
	cfg Config
}

// NewTranscriptAdapter creates a TranscriptAdapter.
func NewTranscriptAdapter(cfg Config) *TranscriptAdapter {
	return &TranscriptAdapter{cfg: cfg}
}

const (
	thinkingMarker   = "[Thinking]"
	toolCallMarker   = "[Tool call]"
	toolResultMarker = "[Tool result]"

	maxVisibleLines       = 10
	noResponsePlaceholder = "[No visible response]"

	transcriptBaseOffset = -time.Hour
	transcriptStep       = time.Minute
)

var (
	userMarkerRe      = regexp.MustCompile(`^(?i)user:\s*$`)
	assistantMarkerRe = regexp.MustCompile(`^(?i)(a|assistant):\s*$`)
	userQueryRe       = regexp.MustCompile(`(?s)<user_query>(.*?)</user_query>`)
	toolArgLineRe     = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*):\s*(.+)$`)
	toolArgInlineRe   = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*):\s*(\S+)`)
)

// syntheticClock hands out strictly increasing fabricated timestamps.
type syntheticClock struct {
	next time.Time
	step time.Duration
}

func (c *syntheticClock) tick() time.Time {
	t := c.next
	c.next = c.next.Add(c.step)
	return t
}

// Harvest parses every transcript file found for the project and
// returns normalized messages plus one conversation per file that
// yielded any.
func (a *TranscriptAdapter) Harvest(projectPath string) ([]Message, []Conversation) {
	dirs := ResolveProjectDirs(a.cfg.TranscriptsDir, projectPath)
	if len(dirs) == 0 {
		return nil, nil
	}

	clock := &syntheticClock{next: a.cfg.now().Add(transcriptBaseOffset), step: transcriptStep}

	var messages []Message
	var conversations []Conversation
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			LogDebug("transcripts: cannot read %s: %v", dir, err)
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			convID := strings.TrimSuffix(entry.Name(), ".txt")

			msgs, err := a.parseFile(path, projectPath, convID, clock)
			if err != nil {
				LogWarn("transcripts: skipping %s: %v", path, err)
				continue
			}
			if len(msgs) == 0 {
				continue
			}
			messages = append(messages, msgs...)
			conversations = append(conversations, SummarizeConversation(convID, SourceTranscripts, msgs))
		}
	}
	return messages, conversations
}

type transcriptBlock struct {
	role  Role
	lines []string
}

func (a *TranscriptAdapter) parseFile(path, projectPath, convID string, clock *syntheticClock) ([]Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &StorageError{Path: path, Op: "read", Err: err}
	}

	var blocks []transcriptBlock
	var current *transcriptBlock
	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case userMarkerRe.MatchString(trimmed):
			blocks = append(blocks, transcriptBlock{role: RoleUser})
			current = &blocks[len(blocks)-1]
		case assistantMarkerRe.MatchString(trimmed):
			blocks = append(blocks, transcriptBlock{role: RoleAssistant})
			current = &blocks[len(blocks)-1]
		default:
			if current != nil {
				current.lines = append(current.lines, line)
			}
		}
	}

	var messages []Message
	for _, block := range blocks {
		var msg Message
		var ok bool
		switch block.role {
		case RoleUser:
			msg, ok = a.userMessage(block)
		case RoleAssistant:
			msg, ok = a.assistantMessage(block)
		}
		if !ok {
			continue
		}
		msg.ID = fmt.Sprintf("%s-%d", convID, len(messages))
		msg.Timestamp = clock.tick()
		msg.Source = SourceTranscripts
		msg.ProjectPath = projectPath
		msg.ConversationID = convID
		msg.RelatedFiles = ExtractFileReferences(msg.Content)
		messages = append(messages, msg)
	}
	return messages, nil
}

// userMessage reads the query out of an explicit <user_query> tag when
// present, falling back to the whole block.
func (a *TranscriptAdapter) userMessage(block transcriptBlock) (Message, bool) {
	text := strings.TrimSpace(strings.Join(block.lines, "\n"))
	if m := userQueryRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	if text == "" {
		return Message{}, false
	}
	return Message{Role: RoleUser, Content: TruncateContent(text, MaxContentLen)}, true
}

// assistantMessage classifies block lines into tool and content
// sections, then extracts the thinking excerpt and tool calls in a
// separate scan over the same lines.
func (a *TranscriptAdapter) assistantMessage(block transcriptBlock) (Message, bool) {
	content := visibleContent(block.lines)
	thinking := thinkingExcerpt(block.lines)
	tools := extractToolCalls(block.lines)

	if content == "" && thinking == "" && len(tools) == 0 {
		return Message{}, false
	}
	if content == "" {
		content = noResponsePlaceholder
	}
	return Message{
		Role:      RoleAssistant,
		Content:   TruncateContent(content, MaxContentLen),
		Thinking:  thinking,
		ToolCalls: tools,
	}, true
}

// visibleContent joins the first content-section lines with single
// spaces. A bracketed marker enters the tool section; the next
// non-empty line that does not start with a bracket exits back to the
// content section and is collected.
func visibleContent(lines []string) string {
	var collected []string
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") {
			// tool section; stays until a non-bracketed line appears
			continue
		}
		if len(collected) < maxVisibleLines {
			collected = append(collected, line)
		}
	}
	if len(collected) > 0 {
		return strings.Join(collected, " ")
	}
	// Fallback: first non-bracketed line anywhere in the block.
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line != "" && !strings.HasPrefix(line, "[") {
			return line
		}
	}
	return ""
}

// thinkingExcerpt captures the text between the thinking marker and
// the next section marker, capped at MaxThinkingLen.
func thinkingExcerpt(lines []string) string {
	var parts []string
	capturing := false
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, thinkingMarker) {
			capturing = true
			if rest := strings.TrimSpace(strings.TrimPrefix(line, thinkingMarker)); rest != "" {
				parts = append(parts, rest)
			}
			continue
		}
		if !capturing {
			continue
		}
		if strings.HasPrefix(line, "[") {
			break
		}
		if line != "" {
			parts = append(parts, line)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return TruncateContent(strings.Join(parts, " "), MaxThinkingLen)
}

// extractToolCalls scans for the tool-invocation marker followed by a
// bare identifier and an optional key: value line-list.
func extractToolCalls(lines []string) []ToolCall {
	var calls []ToolCall
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, toolCallMarker) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(line, toolCallMarker))
		if rest == "" {
			continue
		}
		fields := strings.Fields(rest)
		call := ToolCall{Name: fields[0]}

		args := make(map[string]string)
		inline := strings.TrimSpace(strings.TrimPrefix(rest, fields[0]))
		for _, m := range toolArgInlineRe.FindAllStringSubmatch(inline, -1) {
			args[m[1]] = m[2]
		}
		for j := i + 1; j < len(lines); j++ {
			next := strings.TrimSpace(lines[j])
			m := toolArgLineRe.FindStringSubmatch(next)
			if m == nil {
				break
			}
			args[m[1]] = strings.TrimSpace(m[2])
			i = j
		}
		if len(args) > 0 {
			call.Arguments = args
		}
		calls = append(calls, call)
	}
	return calls
}
