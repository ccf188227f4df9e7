// Package fetcher reads uploaded spreadsheets (XLSX and CSV) into typed
// workbooks.
package fetcher

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sheetmetrics/internal/model"
)

// MaxUploadBytes bounds a single upload; larger files are refused rather
// than read into memory.
const MaxUploadBytes = 32 << 20

// ReadFile reads a workbook from disk, choosing the parser by extension.
func ReadFile(path string) (*model.Workbook, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: stat")
	}
	if info.Size() > MaxUploadBytes {
		return nil, eris.Errorf("fetcher: %s is %d bytes, limit is %d", path, info.Size(), MaxUploadBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: read file")
	}
	return Parse(data, filepath.Base(path))
}

// Parse decodes an upload buffer. The filename's extension selects the
// format: .xlsx (and .xlsm) or .csv.
func Parse(data []byte, filename string) (*model.Workbook, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return ParseXLSX(data, filename)
	case ".csv":
		return ParseCSV(bytes.NewReader(data), filename)
	default:
		return nil, eris.Errorf("fetcher: unsupported file type %q (want .xlsx or .csv)", filepath.Ext(filename))
	}
}
