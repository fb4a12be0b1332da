package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ArtifactsAdapter ingests per-conversation artifact bundles: one
// subdirectory per conversation holding Markdown artifacts and
// optionally images, with a parallel annotations directory supplying
// last-viewed timestamps.
type ArtifactsAdapter struct {
	cfg Config
}

// NewArtifactsAdapter creates an ArtifactsAdapter.
func NewArtifactsAdapter(cfg Config) *ArtifactsAdapter {
	return &ArtifactsAdapter{cfg: cfg}
}

var (
	lastViewedRe = regexp.MustCompile(`(?:lastViewed|last_viewed)[^0-9]{0,5}(\d{10,13})`)
	bareEpochRe  = regexp.MustCompile(`\b\d{10,13}\b`)
)

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true,
	".gif": true, ".svg": true, ".webp": true,
}

// artifactTypeLabels map filename substrings to artifact-type labels.
var artifactTypeLabels = []string{"plan", "walkthrough", "review", "summary", "diagram"}

// Harvest emits one assistant message per qualifying Markdown artifact
// and a per-conversation image summary when images are present. All
// messages in a conversation share the resolved last-viewed time.
func (a *ArtifactsAdapter) Harvest(projectPath string) ([]Message, []Conversation) {
	dirs := ResolveProjectDirs(a.cfg.ArtifactsDir, projectPath)
	if len(dirs) == 0 {
		return nil, nil
	}

	var messages []Message
	var conversations []Conversation
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			LogDebug("artifacts: cannot read %s: %v", dir, err)
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			convID := entry.Name()
			msgs := a.conversationMessages(filepath.Join(dir, convID), convID, projectPath)
			if len(msgs) == 0 {
				continue
			}
			messages = append(messages, msgs...)
			conversations = append(conversations, SummarizeConversation(convID, SourceArtifacts, msgs))
		}
	}
	return messages, conversations
}

func (a *ArtifactsAdapter) conversationMessages(convDir, convID, projectPath string) []Message {
	entries, err := os.ReadDir(convDir)
	if err != nil {
		LogDebug("artifacts: cannot read %s: %v", convDir, err)
		return nil
	}

	timestamp := a.lastViewed(convID)

	var messages []Message
	var imageNames []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))

		if imageExtensions[ext] {
			imageNames = append(imageNames, name)
			continue
		}
		if ext != ".md" || isArtifactVariant(name) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(convDir, name))
		if err != nil {
			LogWarn("artifacts: skipping %s: %v", name, err)
			continue
		}
		content := strings.TrimSpace(string(data))
		if content == "" {
			continue
		}

		stem := strings.TrimSuffix(name, ".md")
		label := artifactType(stem)
		body := fmt.Sprintf("[%s] %s", label, TruncateContent(content, MaxArtifactContentLen))
		messages = append(messages, Message{
			ID:             fmt.Sprintf("%s-%s", convID, stem),
			Timestamp:      timestamp,
			Role:           RoleAssistant,
			Content:        body,
			Source:         SourceArtifacts,
			ProjectPath:    projectPath,
			ConversationID: convID,
			RelatedFiles:   ExtractFileReferences(content),
		})
	}

	if len(imageNames) > 0 {
		messages = append(messages, Message{
			ID:        fmt.Sprintf("%s-images", convID),
			Timestamp: timestamp,
			Role:      RoleAssistant,
			Content: fmt.Sprintf("Generated %d image artifact(s): %s",
				len(imageNames), strings.Join(imageNames, ", ")),
			Source:         SourceArtifacts,
			ProjectPath:    projectPath,
			ConversationID: convID,
		})
	}
	return messages
}

// isArtifactVariant filters out resolved and metadata companions of an
// artifact so only the primary document contributes a message.
func isArtifactVariant(name string) bool {
	lowered := strings.ToLower(name)
	return strings.Contains(lowered, ".resolved.") ||
		strings.Contains(lowered, "metadata")
}

func artifactType(stem string) string {
	lowered := strings.ToLower(stem)
	for _, label := range artifactTypeLabels {
		if strings.Contains(lowered, label) {
			return label
		}
	}
	return "artifact"
}

// lastViewed resolves the conversation's last-viewed time from its
// annotation sidecar, falling back to now.
func (a *ArtifactsAdapter) lastViewed(convID string) time.Time {
	now := a.cfg.now()
	if a.cfg.AnnotationsDir == "" {
		return now
	}

	data, err := os.ReadFile(filepath.Join(a.cfg.AnnotationsDir, convID+".json"))
	if err != nil {
		return now
	}
	content := string(data)

	raw := ""
	if m := lastViewedRe.FindStringSubmatch(content); m != nil {
		raw = m[1]
	} else if m := bareEpochRe.FindString(content); m != "" {
		raw = m
	}
	if raw == "" {
		return now
	}
	return ParseTimestamp(raw, now)
}
