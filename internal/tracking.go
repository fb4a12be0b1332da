package internal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// TrackingAdapter reads a read-only relational store at a fixed
// well-known location. The store does not exist in most environments
// and that is tolerated silently. Tables are introspected first; each
// known table has its own extraction rule, and unknown or missing
// tables contribute nothing.
type TrackingAdapter struct {
	cfg Config
}

// NewTrackingAdapter creates a TrackingAdapter.
func NewTrackingAdapter(cfg Config) *TrackingAdapter {
	return &TrackingAdapter{cfg: cfg}
}

const trackingRowLimit = 100

// Harvest extracts messages from the tracking store. Store-open
// errors degrade to an empty result; they never abort aggregation.
func (a *TrackingAdapter) Harvest(projectPath string) ([]Message, []Conversation) {
	dbPath := a.cfg.TrackingDBPath
	if dbPath == "" {
		return nil, nil
	}
	if _, err := os.Stat(dbPath); err != nil {
		return nil, nil
	}

	db, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		LogDebug("tracking: failed to open %s: %v", dbPath, err)
		return nil, nil
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		LogDebug("tracking: ping failed for %s: %v", dbPath, err)
		return nil, nil
	}

	var messages []Message
	if exists, err := tableExists(db, "conversation_summaries"); err == nil && exists {
		messages = append(messages, a.summaryMessages(db, projectPath)...)
	}
	if exists, err := tableExists(db, "scored_commits"); err == nil && exists {
		messages = append(messages, a.commitMessages(db, projectPath)...)
	}
	return messages, nil
}

func tableExists(db *sql.DB, name string) (bool, error) {
	var exists bool
	err := db.QueryRow(`
		SELECT EXISTS (
			SELECT name FROM sqlite_master
			WHERE type='table' AND name=?
		)
	`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check for %s table: %w", name, err)
	}
	return exists, nil
}

func tableColumns(db *sql.DB, name string) map[string]bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", name))
	if err != nil {
		return nil
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var cid int
		var colName, dataType string
		var notNull int
		var defaultValue sql.NullString
		var pk int
		if err := rows.Scan(&cid, &colName, &dataType, &notNull, &defaultValue, &pk); err != nil {
			continue
		}
		columns[colName] = true
	}
	return columns
}

// summaryMessages contributes one assistant-role message per
// conversation-summary row, most recent first, bounded count.
func (a *TrackingAdapter) summaryMessages(db *sql.DB, projectPath string) []Message {
	columns := tableColumns(db, "conversation_summaries")
	if !columns["summary"] {
		return nil
	}

	query := "SELECT summary, NULL FROM conversation_summaries ORDER BY rowid DESC LIMIT ?"
	if columns["created_at"] {
		query = "SELECT summary, created_at FROM conversation_summaries ORDER BY rowid DESC LIMIT ?"
	}
	rows, err := db.Query(query, trackingRowLimit)
	if err != nil {
		LogDebug("tracking: summary query failed: %v", err)
		return nil
	}
	defer rows.Close()

	now := a.cfg.now()
	var messages []Message
	for rows.Next() {
		var summary sql.NullString
		var createdAt sql.NullString
		if err := rows.Scan(&summary, &createdAt); err != nil {
			continue
		}
		if !summary.Valid || strings.TrimSpace(summary.String) == "" {
			continue
		}
		messages = append(messages, Message{
			ID:           uuid.NewString(),
			Timestamp:    ParseTimestamp(createdAt.String, now),
			Role:         RoleAssistant,
			Content:      TruncateContent(summary.String, MaxContentLen),
			Source:       SourceTracking,
			ProjectPath:  projectPath,
			RelatedFiles: ExtractFileReferences(summary.String),
		})
	}
	return messages
}

// commitMessages contributes one system-role message per scored-commit
// row whose project column matches the project's base name.
func (a *TrackingAdapter) commitMessages(db *sql.DB, projectPath string) []Message {
	columns := tableColumns(db, "scored_commits")
	messageCol := ""
	for _, candidate := range []string{"commit_message", "message"} {
		if columns[candidate] {
			messageCol = candidate
			break
		}
	}
	if messageCol == "" {
		return nil
	}
	projectCol := ""
	for _, candidate := range []string{"project", "project_path"} {
		if columns[candidate] {
			projectCol = candidate
			break
		}
	}
	if projectCol == "" {
		return nil
	}

	scoreExpr := "NULL"
	if columns["score"] {
		scoreExpr = "score"
	}
	query := fmt.Sprintf(
		"SELECT %s, %s FROM scored_commits WHERE %s LIKE ? ORDER BY rowid DESC LIMIT ?",
		messageCol, scoreExpr, projectCol,
	)

	baseName := filepath.Base(projectPath)
	rows, err := db.Query(query, "%"+baseName+"%", trackingRowLimit)
	if err != nil {
		LogDebug("tracking: commit query failed: %v", err)
		return nil
	}
	defer rows.Close()

	now := a.cfg.now()
	var messages []Message
	for rows.Next() {
		var commitMsg sql.NullString
		var score sql.NullFloat64
		if err := rows.Scan(&commitMsg, &score); err != nil {
			continue
		}
		if !commitMsg.Valid || strings.TrimSpace(commitMsg.String) == "" {
			continue
		}
		content := fmt.Sprintf("Commit: %s", strings.TrimSpace(commitMsg.String))
		if score.Valid {
			content = fmt.Sprintf("%s (score: %.1f)", content, score.Float64)
		}
		messages = append(messages, Message{
			ID:          uuid.NewString(),
			Timestamp:   now,
			Role:        RoleSystem,
			Content:     TruncateContent(content, MaxContentLen),
			Source:      SourceTracking,
			ProjectPath: projectPath,
		})
	}
	return messages
}
