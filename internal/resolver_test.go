package internal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDashTransform(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/Users/alex/myproj", "-Users-alex-myproj"},
		{"/home/dev/work/api", "-home-dev-work-api"},
		{"/single", "-single"},
	}

	for _, tt := range tests {
		if got := DashTransform(tt.input); got != tt.want {
			t.Errorf("DashTransform(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestResolveProjectDirsExact(t *testing.T) {
	base := t.TempDir()
	exact := filepath.Join(base, DashTransform("/Users/alex/myproj"))
	if err := os.Mkdir(exact, 0755); err != nil {
		t.Fatal(err)
	}
	// A fuzzy candidate that must be ignored when the exact dir exists.
	if err := os.Mkdir(filepath.Join(base, "alex-myproj-20240101"), 0755); err != nil {
		t.Fatal(err)
	}

	got := ResolveProjectDirs(base, "/Users/alex/myproj")
	if len(got) != 1 || got[0] != exact {
		t.Errorf("ResolveProjectDirs() = %v, want [%s]", got, exact)
	}
}

func TestResolveProjectDirsFallback(t *testing.T) {
	base := t.TempDir()
	for _, name := range []string{"alex-myproj-20240101", "myproj", "unrelated-thing"} {
		if err := os.Mkdir(filepath.Join(base, name), 0755); err != nil {
			t.Fatal(err)
		}
	}
	// Plain files never match.
	if err := os.WriteFile(filepath.Join(base, "myproj.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	got := ResolveProjectDirs(base, "/home/alex/myproj")
	if len(got) != 2 {
		t.Fatalf("ResolveProjectDirs() = %v, want 2 matches", got)
	}
	found := map[string]bool{}
	for _, dir := range got {
		found[filepath.Base(dir)] = true
	}
	if !found["alex-myproj-20240101"] || !found["myproj"] {
		t.Errorf("ResolveProjectDirs() = %v, missing expected candidates", got)
	}
}

func TestResolveProjectDirsAbsent(t *testing.T) {
	got := ResolveProjectDirs(filepath.Join(t.TempDir(), "missing"), "/home/alex/myproj")
	if len(got) != 0 {
		t.Errorf("ResolveProjectDirs() against a missing base = %v, want empty", got)
	}

	if got := ResolveProjectDirs("", "/home/alex/myproj"); len(got) != 0 {
		t.Errorf("ResolveProjectDirs() with empty base = %v, want empty", got)
	}
}

func TestResolveProjectDirsNoMatch(t *testing.T) {
	base := t.TempDir()
	if err := os.Mkdir(filepath.Join(base, "something-else"), 0755); err != nil {
		t.Fatal(err)
	}

	got := ResolveProjectDirs(base, "/home/alex/myproj")
	if len(got) != 0 {
		t.Errorf("ResolveProjectDirs() = %v, want empty", got)
	}
}
