package internal

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ExportsAdapter ingests structured Markdown dialogue exports found
// inside the project tree. An export file is recognized by containing
// both the "User Input" and "Planner Response" section markers, which
// distinguishes it from unrelated Markdown.
type ExportsAdapter struct {
	cfg Config
}

// NewExportsAdapter creates an ExportsAdapter.
func NewExportsAdapter(cfg Config) *ExportsAdapter {
	return &ExportsAdapter{cfg: cfg}
}

const (
	userInputMarker       = "User Input"
	plannerResponseMarker = "Planner Response"

	exportScanMaxDepth = 4
	minExportTextLen   = 5
	exportStep         = time.Second
)

var (
	userHeaderRe      = regexp.MustCompile(`^#{0,6}\s*User Input\s*$`)
	assistantHeaderRe = regexp.MustCompile(`^#{0,6}\s*Planner Response\s*$`)
	actionLineRe      = regexp.MustCompile(`^\*([^*]+)\*$`)
	acceptedCommandRe = regexp.MustCompile("User accepted the command `([^`]+)`")
	bracketedRe       = regexp.MustCompile(`\[([^\]]+)\]`)
)

// skippedScanDirs are never descended into during export detection.
var skippedScanDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true,
	"dist": true, "build": true, "target": true,
}

// Harvest scans the project tree for export files under the configured
// wall-clock budget. A deadline expiry is treated as "source
// unavailable": whatever was found so far is returned, nothing fails.
func (a *ExportsAdapter) Harvest(ctx context.Context, projectPath string) ([]Message, []Conversation) {
	info, err := os.Stat(projectPath)
	if err != nil || !info.IsDir() {
		return nil, nil
	}

	files := a.findExportFiles(ctx, projectPath)
	if len(files) == 0 {
		return nil, nil
	}

	clock := &syntheticClock{next: a.cfg.now().Add(-time.Hour), step: exportStep}

	var messages []Message
	var conversations []Conversation
	for _, path := range files {
		msgs := a.parseFile(path, projectPath, clock)
		if len(msgs) == 0 {
			continue
		}
		convID := strings.TrimSuffix(filepath.Base(path), ".md")
		messages = append(messages, msgs...)
		conversations = append(conversations, SummarizeConversation(convID, SourceExports, msgs))
	}
	return messages, conversations
}

func (a *ExportsAdapter) findExportFiles(ctx context.Context, projectPath string) []string {
	var files []string
	root := filepath.Clean(projectPath)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			LogDebug("exports: scan budget exhausted under %s", root)
			return fs.SkipAll
		}
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if skippedScanDirs[name] || strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			if scanDepth(root, path) >= exportScanMaxDepth {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		if isExportFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		LogDebug("exports: walk of %s stopped: %v", root, err)
	}
	return files
}

func scanDepth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}

// isExportFile checks for the positive detection signature: both
// section markers present anywhere in the content.
func isExportFile(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	content := string(data)
	return strings.Contains(content, userInputMarker) &&
		strings.Contains(content, plannerResponseMarker)
}

func (a *ExportsAdapter) parseFile(path, projectPath string, clock *syntheticClock) []Message {
	data, err := os.ReadFile(path)
	if err != nil {
		LogWarn("exports: skipping %s: %v", path, err)
		return nil
	}

	convID := strings.TrimSuffix(filepath.Base(path), ".md")

	var messages []Message
	var role Role
	var textLines []string
	var actions []ToolCall

	flush := func() {
		defer func() {
			textLines = nil
			actions = nil
		}()
		if role == "" {
			return
		}
		text := strings.TrimSpace(strings.Join(textLines, "\n"))
		if len(text) <= minExportTextLen {
			return
		}
		messages = append(messages, Message{
			ID:             fmt.Sprintf("%s-%d", convID, len(messages)),
			Timestamp:      clock.tick(),
			Role:           role,
			Content:        TruncateContent(text, MaxContentLen),
			Source:         SourceExports,
			ProjectPath:    projectPath,
			ConversationID: convID,
			ToolCalls:      actions,
			RelatedFiles:   ExtractFileReferences(text),
		})
	}

	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(strings.TrimRight(raw, "\r"))
		switch {
		case userHeaderRe.MatchString(line):
			flush()
			role = RoleUser
		case assistantHeaderRe.MatchString(line):
			flush()
			role = RoleAssistant
		default:
			if m := actionLineRe.FindStringSubmatch(line); m != nil {
				if call, ok := parseActionLine(m[1]); ok {
					actions = append(actions, call)
				}
				continue
			}
			textLines = append(textLines, raw)
		}
	}
	flush()

	return messages
}

// parseActionLine maps a single-asterisk-wrapped action line onto a
// ToolCall by pattern family. Unrecognized actions yield nothing.
func parseActionLine(text string) (ToolCall, bool) {
	text = strings.TrimSpace(text)
	switch {
	case acceptedCommandRe.MatchString(text):
		m := acceptedCommandRe.FindStringSubmatch(text)
		return ToolCall{Name: "run_command", Arguments: map[string]string{"command": m[1]}}, true

	case strings.HasPrefix(text, "Edited"):
		call := ToolCall{Name: "edit_file"}
		if path := firstBracketed(text); path != "" {
			call.Arguments = map[string]string{"path": path}
		}
		return call, true

	case strings.HasPrefix(text, "Listed directory"):
		call := ToolCall{Name: "list_dir"}
		if path := firstBracketed(text); path != "" {
			call.Arguments = map[string]string{"path": path}
		} else if rest := strings.TrimSpace(strings.TrimPrefix(text, "Listed directory")); rest != "" {
			call.Arguments = map[string]string{"path": rest}
		}
		return call, true

	case strings.HasPrefix(text, "Searched web for"):
		query := strings.TrimSpace(strings.TrimPrefix(text, "Searched web for"))
		query = strings.Trim(query, `"'`)
		call := ToolCall{Name: "search_web"}
		if query != "" {
			call.Arguments = map[string]string{"query": query}
		}
		return call, true
	}
	return ToolCall{}, false
}

func firstBracketed(text string) string {
	if m := bracketedRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}
