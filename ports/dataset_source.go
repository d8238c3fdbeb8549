package ports

import (
	"context"

	"inequalitymap/domain/ownership"
)

// DatasetSourcePort loads the full homeownership dataset from wherever it is
// published. Implementations perform I/O and are expected to be called once
// per process by the dataset cache.
type DatasetSourcePort interface {
	Load(ctx context.Context) (ownership.Dataset, error)
	// Describe names the source for logs and the status endpoint
	Describe() string
}
