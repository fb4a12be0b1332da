package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/valtlai/agent-history/internal"
)

// pointSourcesAt redirects every source location into a temp directory
// so command runs never touch the real home directory.
func pointSourcesAt(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("HOME", dir)
	t.Setenv("AGENT_HISTORY_TRANSCRIPTS_DIR", filepath.Join(dir, "transcripts"))
	t.Setenv("AGENT_HISTORY_TRACKING_DB", filepath.Join(dir, "tracking.db"))
	t.Setenv("AGENT_HISTORY_CHATS_DIR", filepath.Join(dir, "chats"))
	t.Setenv("AGENT_HISTORY_ARTIFACTS_DIR", filepath.Join(dir, "artifacts"))
	t.Setenv("AGENT_HISTORY_ANNOTATIONS_DIR", filepath.Join(dir, "annotations"))
}

func TestHistoryCommandExportToFile(t *testing.T) {
	dir := t.TempDir()
	pointSourcesAt(t, dir)
	outPath := filepath.Join(dir, "out.json")

	rootCmd.SetArgs([]string{"history", dir, "--format", "json", "--output", outPath})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("export file not written: %v", err)
	}
	var result internal.HistoryResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if result.TotalMessages != 0 {
		t.Errorf("TotalMessages = %d, want 0 for empty sources", result.TotalMessages)
	}
}

func TestHistoryCommandUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	pointSourcesAt(t, dir)

	rootCmd.SetArgs([]string{"history", dir, "--format", "xml"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	if err := rootCmd.Execute(); err == nil {
		t.Error("Execute() should fail for an unsupported format")
	}
}

func TestHistoryCommandRequiresPath(t *testing.T) {
	rootCmd.SetArgs([]string{"history"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	if err := rootCmd.Execute(); err == nil {
		t.Error("Execute() should fail without a project path")
	}
}

func TestSourcesCommand(t *testing.T) {
	dir := t.TempDir()
	pointSourcesAt(t, dir)

	rootCmd.SetArgs([]string{"sources", dir})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	if err := rootCmd.Execute(); err != nil {
		t.Errorf("Execute() error: %v", err)
	}
}
