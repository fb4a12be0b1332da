package export

import (
	"encoding/json"
	"io"

	"github.com/valtlai/agent-history/internal"
)

// JSONExporter exports a history result as one indented JSON document
type JSONExporter struct{}

// Export writes the full result as indented JSON
func (e *JSONExporter) Export(result *internal.HistoryResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
