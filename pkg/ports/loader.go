package ports

import (
	"context"

	"github.com/aretw0/stepwise/pkg/domain"
)

// LibraryPack is an external collection of library step templates
// (e.g. a folder of Markdown documents).
type LibraryPack interface {
	// Export writes the given templates to the pack.
	Export(ctx context.Context, items []domain.LibraryStep) error

	// Import reads every template in the pack, ordered by title.
	// The returned items keep the pack's ids; callers mint fresh ids on insertion.
	Import(ctx context.Context) ([]domain.LibraryStep, error)
}
