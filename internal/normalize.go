package internal

import (
	"encoding/json"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Shared normalization used by every adapter. Adapters must not
// hand-roll their own role mapping or file-reference extraction.

const (
	// MaxContentLen caps message content for most sources.
	MaxContentLen = 1000
	// MaxArtifactContentLen caps artifact bodies, which carry whole documents.
	MaxArtifactContentLen = 2000
	// MaxThinkingLen caps captured thinking excerpts.
	MaxThinkingLen = 500

	maxPathLen         = 150
	forbiddenPathChars = `<>"|?*`

	// millisecondThreshold separates epoch-millisecond values from
	// epoch-second values: anything above it is milliseconds.
	millisecondThreshold = 1e12
)

// roleSynonyms maps the role spellings seen across tools onto the four
// canonical roles.
var roleSynonyms = map[string]Role{
	"user":      RoleUser,
	"human":     RoleUser,
	"you":       RoleUser,
	"me":        RoleUser,
	"assistant": RoleAssistant,
	"claude":    RoleAssistant,
	"gpt":       RoleAssistant,
	"bot":       RoleAssistant,
	"model":     RoleAssistant,
	"ai":        RoleAssistant,
	"agent":     RoleAssistant,
	"system":    RoleSystem,
	"context":   RoleSystem,
	"tool":      RoleTool,
	"function":  RoleTool,
	"action":    RoleTool,
}

// NormalizeRole maps a raw role value onto a canonical Role.
// Unrecognized values default to user.
func NormalizeRole(value string) Role {
	if role, ok := roleSynonyms[strings.ToLower(strings.TrimSpace(value))]; ok {
		return role
	}
	return RoleUser
}

// ParseTimestamp converts a raw timestamp of unknown convention to a
// time.Time. Numeric values above 1e12 are epoch milliseconds, smaller
// positive numbers epoch seconds; strings are tried as numerics first,
// then as calendar dates. Anything unparsable yields fallback.
func ParseTimestamp(raw interface{}, fallback time.Time) time.Time {
	switch v := raw.(type) {
	case float64:
		return epochToTime(v, fallback)
	case int64:
		return epochToTime(float64(v), fallback)
	case int:
		return epochToTime(float64(v), fallback)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return epochToTime(f, fallback)
		}
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return fallback
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return epochToTime(f, fallback)
		}
		layouts := []string{
			time.RFC3339Nano,
			time.RFC3339,
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"2006-01-02",
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	}
	return fallback
}

func epochToTime(f float64, fallback time.Time) time.Time {
	if f <= 0 {
		return fallback
	}
	if f > millisecondThreshold {
		return time.UnixMilli(int64(f))
	}
	return time.Unix(int64(f), 0)
}

// TruncateContent caps text at max runes, appending an ellipsis marker
// when anything was cut.
func TruncateContent(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

var (
	backtickSpanRe = regexp.MustCompile("`([^`]+)`")
	atMentionRe    = regexp.MustCompile(`@([A-Za-z0-9_\-./]+)`)
	barePathRe     = regexp.MustCompile(`[A-Za-z0-9_\-./]+\.[A-Za-z0-9]{1,8}`)
)

// allowedRefExtensions is the allow-list of source/doc/config
// extensions a file reference may carry.
var allowedRefExtensions = map[string]bool{
	".ts": true, ".tsx": true, ".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".go": true, ".py": true, ".rb": true, ".rs": true, ".java": true, ".kt": true,
	".c": true, ".cc": true, ".cpp": true, ".h": true, ".hpp": true, ".cs": true,
	".php": true, ".swift": true, ".scala": true, ".sh": true, ".bash": true,
	".sql": true, ".html": true, ".css": true, ".scss": true, ".less": true,
	".vue": true, ".svelte": true, ".json": true, ".yaml": true, ".yml": true,
	".toml": true, ".ini": true, ".cfg": true, ".conf": true, ".env": true,
	".md": true, ".markdown": true, ".txt": true, ".rst": true, ".xml": true,
	".lock": true, ".mod": true, ".sum": true, ".proto": true, ".graphql": true,
}

// ExtractFileReferences pulls normalized file paths out of free text:
// backtick-delimited spans, @-prefixed mentions, and bare path-like
// tokens. Candidates must carry a known extension, stay under the
// length cap, and contain none of the forbidden characters. Accepted
// paths are normalized to a leading-slash form and deduplicated; the
// result is sorted for stable output.
func ExtractFileReferences(text string) []string {
	if text == "" {
		return nil
	}

	seen := make(map[string]bool)

	for _, m := range backtickSpanRe.FindAllStringSubmatch(text, -1) {
		addFileRef(seen, m[1])
	}
	for _, m := range atMentionRe.FindAllStringSubmatch(text, -1) {
		addFileRef(seen, m[1])
	}
	for _, m := range barePathRe.FindAllString(text, -1) {
		addFileRef(seen, m)
	}

	if len(seen) == 0 {
		return nil
	}
	refs := make([]string, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

func addFileRef(seen map[string]bool, candidate string) {
	normalized, ok := normalizeFileRef(candidate)
	if ok {
		seen[normalized] = true
	}
}

func normalizeFileRef(candidate string) (string, bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || len(candidate) > maxPathLen {
		return "", false
	}
	if strings.ContainsAny(candidate, forbiddenPathChars) {
		return "", false
	}
	if strings.ContainsAny(candidate, " \t\n") {
		return "", false
	}
	ext := strings.ToLower(filepath.Ext(candidate))
	if !allowedRefExtensions[ext] {
		return "", false
	}

	candidate = strings.TrimPrefix(candidate, "./")
	if !strings.HasPrefix(candidate, "/") {
		candidate = "/" + candidate
	}
	return candidate, true
}
