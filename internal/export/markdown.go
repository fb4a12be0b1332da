package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/valtlai/agent-history/internal"
)

// MarkdownExporter exports a history result in Markdown format
type MarkdownExporter struct{}

// Export writes the result as a readable Markdown report
func (e *MarkdownExporter) Export(result *internal.HistoryResult, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Conversation History\n\n")
	_, _ = fmt.Fprintf(w, "**Messages:** %d  \n", result.TotalMessages)
	_, _ = fmt.Fprintf(w, "**Conversations:** %d  \n", len(result.Conversations))

	if len(result.Sources) > 0 {
		names := make([]string, len(result.Sources))
		for i, source := range result.Sources {
			names[i] = string(source)
		}
		_, _ = fmt.Fprintf(w, "**Sources:** %s  \n", strings.Join(names, ", "))
	}
	if result.DateRange != nil {
		_, _ = fmt.Fprintf(w, "**Range:** %s to %s  \n",
			result.DateRange.Start.Format(time.RFC3339),
			result.DateRange.End.Format(time.RFC3339))
	}

	_, _ = fmt.Fprintf(w, "\n---\n\n## Messages\n\n")

	for i, msg := range result.Messages {
		timestamp := ""
		if !msg.Timestamp.IsZero() {
			timestamp = fmt.Sprintf(" (%s)", msg.Timestamp.Format(time.RFC3339))
		}

		content := escapeMarkdown(msg.Content)
		_, _ = fmt.Fprintf(w, "**%s** [%s]%s\n\n%s\n\n", msg.Role, msg.Source, timestamp, content)

		for _, call := range msg.ToolCalls {
			_, _ = fmt.Fprintf(w, "- tool: `%s`", call.Name)
			for key, value := range call.Arguments {
				_, _ = fmt.Fprintf(w, " %s=%s", key, value)
			}
			_, _ = fmt.Fprintf(w, "\n")
		}
		if len(msg.ToolCalls) > 0 {
			_, _ = fmt.Fprintf(w, "\n")
		}

		if i < len(result.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// escapeMarkdown escapes markdown emphasis outside code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
