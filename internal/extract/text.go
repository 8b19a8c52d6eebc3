package extract

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sevap8/ai-platform/internal/chunking"
)

func loadPlainText(path, source string) ([]chunking.Record, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	return wholeFileRecord(string(content), source), nil
}

// loadJSON parses and re-marshals the document so malformed uploads
// fail here instead of producing garbage chunks, and so the stored
// text is a canonical compact rendition.
func loadJSON(path, source string) ([]chunking.Record, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}

	var parsed any
	if err := json.Unmarshal(content, &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", source, err)
	}
	compact, err := json.Marshal(parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode JSON from %s: %w", source, err)
	}
	return wholeFileRecord(string(compact), source), nil
}

func loadYAML(path, source string) ([]chunking.Record, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}

	var parsed any
	if err := yaml.Unmarshal(content, &parsed); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", source, err)
	}
	rendered, err := yaml.Marshal(parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode YAML from %s: %w", source, err)
	}
	return wholeFileRecord(string(rendered), source), nil
}

// loadXML validates well-formedness by walking the token stream, then
// keeps the original text as the record content.
func loadXML(path, source string) ([]chunking.Record, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}

	dec := xml.NewDecoder(bytes.NewReader(content))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid XML in %s: %w", source, err)
		}
	}
	return wholeFileRecord(string(content), source), nil
}

func wholeFileRecord(text, source string) []chunking.Record {
	return []chunking.Record{{Text: text, Source: source}}
}
