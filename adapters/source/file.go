package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"inequalitymap/internal"
	"inequalitymap/internal/errors"
)

// FileReader handles reading a local CSV or Excel copy of the dataset
type FileReader struct {
	filePath string
	parser   tableParser
}

// NewFileReader picks the format from the file extension
func NewFileReader(filePath string, logger *internal.Logger) *FileReader {
	format := FormatCSV
	if strings.EqualFold(filepath.Ext(filePath), ".xlsx") {
		format = FormatXLSX
	}
	return &FileReader{filePath: filePath, parser: tableParser{format: format, logger: logger}}
}

// Describe returns the file path
func (r *FileReader) Describe() string {
	return r.filePath
}

// ReadTable reads the whole file
func (r *FileReader) ReadTable(ctx context.Context) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FetchFailed(r.filePath, fmt.Errorf("%s file not found", strings.ToUpper(string(r.parser.format))))
		}
		return nil, errors.FetchFailed(r.filePath, err)
	}
	defer f.Close()

	table, err := r.parser.parse(f)
	if err != nil {
		return nil, errors.FetchFailed(r.filePath, err)
	}
	r.parser.logger.Info("[FileReader] read %d rows from %s", len(table.Rows), r.filePath)
	return table, nil
}
