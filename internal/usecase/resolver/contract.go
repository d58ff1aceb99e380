package resolver

import "context"

// Fetcher lists the full child URNs one level below a URN, in service order.
type Fetcher interface {
	ValidReff(ctx context.Context, urn string) ([]string, error)
}
