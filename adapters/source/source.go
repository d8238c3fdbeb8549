package source

import (
	"context"

	"inequalitymap/domain/ownership"
	"inequalitymap/internal"
	"inequalitymap/internal/config"
	"inequalitymap/internal/errors"
	"inequalitymap/ports"
)

// TableReader produces an untyped table from some location
type TableReader interface {
	ReadTable(ctx context.Context) (*Table, error)
	Describe() string
}

// Source reads a table and decodes it into the ownership dataset
type Source struct {
	reader TableReader
	logger *internal.Logger
}

var _ ports.DatasetSourcePort = (*Source)(nil)

// NewSource wraps an arbitrary table reader
func NewSource(reader TableReader, logger *internal.Logger) *Source {
	return &Source{reader: reader, logger: logger}
}

// FromConfig picks a local file when DATA_FILE is set, otherwise the
// published URL
func FromConfig(cfg config.DataConfig, logger *internal.Logger) *Source {
	if cfg.File != "" {
		return NewSource(NewFileReader(cfg.File, logger), logger)
	}
	return NewSource(NewHTTPReader(cfg.URL, cfg.FetchTimeout, logger), logger)
}

// Describe names the underlying location
func (s *Source) Describe() string {
	return s.reader.Describe()
}

// Load reads and decodes the dataset
func (s *Source) Load(ctx context.Context) (ownership.Dataset, error) {
	table, err := s.reader.ReadTable(ctx)
	if err != nil {
		return nil, err
	}

	ds, report, err := Decode(table)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode dataset from %s", s.Describe())
	}

	if report.Rejected > 0 {
		s.logger.Warn("[Source] rejected %d of %d rows from %s (first %d listed at TRACE)",
			report.Rejected, report.Total, s.Describe(), len(report.Reasons))
		for _, reason := range report.Reasons {
			s.logger.Trace("[Source] rejected %s", reason)
		}
	}
	s.logger.Info("[Source] decoded %d rows from %s", report.Accepted, s.Describe())
	return ds, nil
}
