package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleExport = `# Session notes

### User Input

Please add a logging helper

### Planner Response

I'll add the helper now.

*Edited [internal/logger.go] with small changes*

*User accepted the command ` + "`npm install`" + `*

Done with the change.
`

func TestExportsHarvest(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := Config{Now: func() time.Time { return fixed }}
	projectDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(projectDir, "walkthrough.md"), []byte(sampleExport), 0644); err != nil {
		t.Fatal(err)
	}
	// Markdown without the section markers is not an export.
	if err := os.WriteFile(filepath.Join(projectDir, "README.md"), []byte("# Readme\n\nNothing here."), 0644); err != nil {
		t.Fatal(err)
	}

	msgs, convs := NewExportsAdapter(cfg).Harvest(context.Background(), projectDir)

	if len(msgs) != 2 {
		t.Fatalf("Harvest() returned %d messages, want 2", len(msgs))
	}

	user := msgs[0]
	if user.Role != RoleUser || user.Content != "Please add a logging helper" {
		t.Errorf("msgs[0] = %+v", user)
	}
	if user.ConversationID != "walkthrough" {
		t.Errorf("msgs[0].ConversationID = %q, want walkthrough", user.ConversationID)
	}

	assistant := msgs[1]
	if assistant.Role != RoleAssistant {
		t.Errorf("msgs[1].Role = %v, want assistant", assistant.Role)
	}
	if len(assistant.ToolCalls) != 2 {
		t.Fatalf("msgs[1].ToolCalls = %v, want 2 calls", assistant.ToolCalls)
	}
	if assistant.ToolCalls[0].Name != "edit_file" || assistant.ToolCalls[0].Arguments["path"] != "internal/logger.go" {
		t.Errorf("first tool call = %+v", assistant.ToolCalls[0])
	}
	if assistant.ToolCalls[1].Name != "run_command" || assistant.ToolCalls[1].Arguments["command"] != "npm install" {
		t.Errorf("second tool call = %+v", assistant.ToolCalls[1])
	}

	// Synthetic timestamps start an hour back and step one second.
	wantFirst := fixed.Add(-time.Hour)
	if !user.Timestamp.Equal(wantFirst) {
		t.Errorf("msgs[0].Timestamp = %v, want %v", user.Timestamp, wantFirst)
	}
	if !assistant.Timestamp.Equal(wantFirst.Add(time.Second)) {
		t.Errorf("msgs[1].Timestamp = %v, want %v", assistant.Timestamp, wantFirst.Add(time.Second))
	}

	if len(convs) != 1 {
		t.Fatalf("Harvest() returned %d conversations, want 1", len(convs))
	}
	if convs[0].ID != "walkthrough" || convs[0].Title != "Please add a logging helper" {
		t.Errorf("conv = %+v", convs[0])
	}
}

func TestExportsShortSectionsDropped(t *testing.T) {
	projectDir := t.TempDir()
	content := "### User Input\n\nok\n\n### Planner Response\n\nA longer reply that survives the length floor.\n"
	if err := os.WriteFile(filepath.Join(projectDir, "chat.md"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	msgs, _ := NewExportsAdapter(Config{}).Harvest(context.Background(), projectDir)
	if len(msgs) != 1 {
		t.Fatalf("Harvest() returned %d messages, want 1 (short section dropped)", len(msgs))
	}
	if msgs[0].Role != RoleAssistant {
		t.Errorf("msgs[0].Role = %v, want assistant", msgs[0].Role)
	}
}

func TestExportsScanDepthBound(t *testing.T) {
	projectDir := t.TempDir()
	deep := filepath.Join(projectDir, "a", "b", "c", "d", "e")
	if err := os.MkdirAll(deep, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(deep, "chat.md"), []byte(sampleExport), 0644); err != nil {
		t.Fatal(err)
	}
	shallow := filepath.Join(projectDir, "docs")
	if err := os.MkdirAll(shallow, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(shallow, "chat.md"), []byte(sampleExport), 0644); err != nil {
		t.Fatal(err)
	}

	msgs, convs := NewExportsAdapter(Config{}).Harvest(context.Background(), projectDir)
	if len(convs) != 1 {
		t.Fatalf("Harvest() found %d conversations, want only the shallow one", len(convs))
	}
	if len(msgs) != 2 {
		t.Errorf("Harvest() returned %d messages, want 2", len(msgs))
	}
}

func TestExportsSkippedDirs(t *testing.T) {
	projectDir := t.TempDir()
	for _, dir := range []string{"node_modules", ".hidden"} {
		sub := filepath.Join(projectDir, dir)
		if err := os.MkdirAll(sub, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(sub, "chat.md"), []byte(sampleExport), 0644); err != nil {
			t.Fatal(err)
		}
	}

	msgs, _ := NewExportsAdapter(Config{}).Harvest(context.Background(), projectDir)
	if len(msgs) != 0 {
		t.Errorf("Harvest() returned %d messages from skipped directories, want 0", len(msgs))
	}
}

func TestExportsCancelledScan(t *testing.T) {
	projectDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(projectDir, "chat.md"), []byte(sampleExport), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	msgs, convs := NewExportsAdapter(Config{}).Harvest(ctx, projectDir)
	if len(msgs) != 0 || len(convs) != 0 {
		t.Error("an expired scan budget must degrade to an empty result")
	}
}

func TestExportsMissingProject(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")
	msgs, convs := NewExportsAdapter(Config{}).Harvest(context.Background(), missing)
	if len(msgs) != 0 || len(convs) != 0 {
		t.Error("missing project dir must yield nothing")
	}
}

func TestParseActionLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
		wantArgs map[string]string
		wantOK   bool
	}{
		{
			name:     "accepted command",
			input:    "User accepted the command `make lint`",
			wantName: "run_command",
			wantArgs: map[string]string{"command": "make lint"},
			wantOK:   true,
		},
		{
			name:     "edited file with target",
			input:    "Edited [src/app.ts] adding a handler",
			wantName: "edit_file",
			wantArgs: map[string]string{"path": "src/app.ts"},
			wantOK:   true,
		},
		{
			name:     "listed directory bare",
			input:    "Listed directory src/components",
			wantName: "list_dir",
			wantArgs: map[string]string{"path": "src/components"},
			wantOK:   true,
		},
		{
			name:     "searched web quoted",
			input:    `Searched web for "go context deadline"`,
			wantName: "search_web",
			wantArgs: map[string]string{"query": "go context deadline"},
			wantOK:   true,
		},
		{
			name:   "unrecognized action",
			input:  "Viewed file main.go",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, ok := parseActionLine(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("parseActionLine(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if call.Name != tt.wantName {
				t.Errorf("name = %q, want %q", call.Name, tt.wantName)
			}
			for k, v := range tt.wantArgs {
				if call.Arguments[k] != v {
					t.Errorf("argument %s = %q, want %q", k, call.Arguments[k], v)
				}
			}
		})
	}
}
