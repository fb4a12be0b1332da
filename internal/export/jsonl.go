package export

import (
	"encoding/json"
	"io"

	"github.com/valtlai/agent-history/internal"
)

// JSONLExporter exports messages as JSON Lines, one message per line
type JSONLExporter struct{}

// Export writes each message as a single JSON line
func (e *JSONLExporter) Export(result *internal.HistoryResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, msg := range result.Messages {
		if err := enc.Encode(msg); err != nil {
			return err
		}
	}
	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
