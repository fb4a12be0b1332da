package export

import (
	"io"

	"github.com/valtlai/agent-history/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports a history result in YAML format
type YAMLExporter struct{}

// Export writes the full result as YAML
func (e *YAMLExporter) Export(result *internal.HistoryResult, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(result)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
