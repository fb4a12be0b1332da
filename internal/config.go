package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config carries every filesystem location the pipeline reads from, so
// callers and tests can substitute fixtures instead of the real home
// directory. All fields are plain values; nothing deeper in the
// pipeline consults process-wide state.
type Config struct {
	// TranscriptsDir is the base directory holding per-project
	// plain-text transcript directories.
	TranscriptsDir string `toml:"transcripts_dir"`

	// TrackingDBPath is the fixed location of the read-only tracking
	// store. It does not exist in most environments.
	TrackingDBPath string `toml:"tracking_db"`

	// ChatsDir is the base directory holding per-project JSON chat
	// documents of arbitrary shape.
	ChatsDir string `toml:"chats_dir"`

	// ArtifactsDir is the base directory holding per-project artifact
	// bundles, one subdirectory per conversation.
	ArtifactsDir string `toml:"artifacts_dir"`

	// AnnotationsDir holds per-conversation sidecar files carrying
	// last-viewed timestamps for artifact bundles.
	AnnotationsDir string `toml:"annotations_dir"`

	// ScanTimeoutSeconds bounds project-tree walks (markdown export
	// detection). Expiry degrades to "source unavailable".
	ScanTimeoutSeconds int `toml:"scan_timeout_seconds"`

	// Now supplies the clock used for synthetic timestamps and
	// unparsable-timestamp fallbacks. Tests pin it; zero value means
	// time.Now.
	Now func() time.Time `toml:"-"`
}

const defaultScanTimeoutSeconds = 10

// DefaultConfig derives the well-known source locations under the
// given home directory.
func DefaultConfig(homeDir string) Config {
	base := filepath.Join(homeDir, ".config", "agent-sessions")
	return Config{
		TranscriptsDir:     filepath.Join(base, "transcripts"),
		TrackingDBPath:     filepath.Join(base, "tracking.db"),
		ChatsDir:           filepath.Join(base, "chats"),
		ArtifactsDir:       filepath.Join(base, "artifacts"),
		AnnotationsDir:     filepath.Join(base, "annotations"),
		ScanTimeoutSeconds: defaultScanTimeoutSeconds,
	}
}

// LoadConfig builds the effective configuration: defaults from the
// user's home directory, overlaid by an optional TOML file, overlaid
// by AGENT_HISTORY_* environment variables.
func LoadConfig(configPath string) (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get home directory: %w", err)
	}
	cfg := DefaultConfig(home)

	if configPath == "" {
		configPath = filepath.Join(home, ".config", "agent-history", "config.toml")
		if _, err := os.Stat(configPath); err != nil {
			configPath = ""
		}
	}

	if configPath != "" {
		if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to load config %s: %w", configPath, err)
		}
	}

	cfg.applyEnvOverrides()

	if cfg.ScanTimeoutSeconds <= 0 {
		cfg.ScanTimeoutSeconds = defaultScanTimeoutSeconds
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("AGENT_HISTORY_TRANSCRIPTS_DIR"); v != "" {
		c.TranscriptsDir = v
	}
	if v := os.Getenv("AGENT_HISTORY_TRACKING_DB"); v != "" {
		c.TrackingDBPath = v
	}
	if v := os.Getenv("AGENT_HISTORY_CHATS_DIR"); v != "" {
		c.ChatsDir = v
	}
	if v := os.Getenv("AGENT_HISTORY_ARTIFACTS_DIR"); v != "" {
		c.ArtifactsDir = v
	}
	if v := os.Getenv("AGENT_HISTORY_ANNOTATIONS_DIR"); v != "" {
		c.AnnotationsDir = v
	}
	if v := os.Getenv("AGENT_HISTORY_SCAN_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.ScanTimeoutSeconds = secs
		}
	}
}

// ScanTimeout returns the tree-walk budget as a duration.
func (c Config) ScanTimeout() time.Duration {
	secs := c.ScanTimeoutSeconds
	if secs <= 0 {
		secs = defaultScanTimeoutSeconds
	}
	return time.Duration(secs) * time.Second
}

func (c Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
