// Package extract turns uploaded files into chunking records. Each
// loader produces a raw text rendition with page boundaries where the
// format has them; all chunk-level normalization happens downstream in
// internal/chunking.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sevap8/ai-platform/internal/chunking"
)

// Loader dispatches file extraction by extension.
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

// textExtensions are formats read as-is (code files included, matching
// the upload allow-list).
var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".csv": true,
	".py": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
}

// Load reads the file at path and returns its records. The source
// argument is the client-facing file name carried into chunk metadata;
// it decides the extraction strategy, since a stored path may have a
// generated name.
func (l *Loader) Load(path, source string) ([]chunking.Record, error) {
	ext := strings.ToLower(filepath.Ext(source))
	switch {
	case ext == ".pdf":
		return loadPDF(path, source)
	case ext == ".xlsx":
		return loadExcel(path, source)
	case ext == ".xls":
		return nil, fmt.Errorf("%w: legacy .xls workbooks are not supported, convert to .xlsx", chunking.ErrUnsupportedSource)
	case ext == ".json":
		return loadJSON(path, source)
	case ext == ".yaml" || ext == ".yml":
		return loadYAML(path, source)
	case ext == ".xml":
		return loadXML(path, source)
	case textExtensions[ext]:
		return loadPlainText(path, source)
	default:
		return nil, fmt.Errorf("%w: %q", chunking.ErrUnsupportedSource, ext)
	}
}

// Supported reports whether the loader can handle the file name.
func (l *Loader) Supported(source string) bool {
	ext := strings.ToLower(filepath.Ext(source))
	if ext == ".pdf" || ext == ".xlsx" || ext == ".json" || ext == ".yaml" || ext == ".yml" || ext == ".xml" {
		return true
	}
	return textExtensions[ext]
}
