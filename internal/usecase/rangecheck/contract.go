package rangecheck

import (
	"context"

	domcorpus "github.com/kailas-cloud/ctsrange/internal/domain/corpus"
)

// Resolver maps citation labels to ordinals.
type Resolver interface {
	MapLabelToValue(ctx context.Context, c domcorpus.Corpus, label string, depthIndex int, preceding []string) (int, error)
}
