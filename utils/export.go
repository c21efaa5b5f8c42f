package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

type ExportData struct {
	Timestamp  string `json:"timestamp"`
	ExportType string `json:"export_type"`
	Source     string `json:"source"`
	Data       any    `json:"data"`
}

func sanitizeString(s string) string {
	if !utf8.ValidString(s) {
		return strings.ToValidUTF8(s, "?")
	}
	return s
}

func decodeUTF8(data any) any {
	switch v := data.(type) {
	case string:
		return sanitizeString(v)
	case map[string]any:
		result := make(map[string]any)
		for key, value := range v {
			result[sanitizeString(key)] = decodeUTF8(value)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, value := range v {
			result[i] = decodeUTF8(value)
		}
		return result
	default:
		return v
	}
}

// ExportToJSON writes data under dir/filename.json wrapped in an ExportData
// envelope and returns the written path. Non-ASCII text is kept unescaped so
// Hindi and Punjabi transcripts stay readable.
func ExportToJSON(dir, filename string, data any, exportType, source string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create exports directory: %w", err)
	}

	// Round-trip through JSON so structs are sanitized like plain maps.
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal export data: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("failed to normalize export data: %w", err)
	}

	exportData := ExportData{
		Timestamp:  time.Now().Format(time.RFC3339),
		ExportType: exportType,
		Source:     source,
		Data:       decodeUTF8(generic),
	}

	var buf strings.Builder
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(exportData); err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if !strings.HasSuffix(filename, ".json") {
		filename += ".json"
	}
	path := filepath.Join(dir, filepath.Base(filename))

	if err := os.WriteFile(path, []byte(strings.TrimSpace(buf.String())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}
	return path, nil
}
