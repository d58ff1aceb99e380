// Package corpus is the read-only registry of citable corpora.
package corpus

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/ctsrange/internal/domain"
	domcorpus "github.com/kailas-cloud/ctsrange/internal/domain/corpus"
)

// Registry is an in-memory corpus lookup seeded at startup.
type Registry struct {
	byID  map[string]domcorpus.Corpus
	byURN map[string]string
	ids   []string
}

// New creates a registry. Duplicate ids or URNs are rejected.
func New(corpora ...domcorpus.Corpus) (*Registry, error) {
	r := &Registry{
		byID:  make(map[string]domcorpus.Corpus, len(corpora)),
		byURN: make(map[string]string, len(corpora)),
	}
	for _, c := range corpora {
		if _, dup := r.byID[c.ID()]; dup {
			return nil, fmt.Errorf("duplicate corpus id %q", c.ID())
		}
		if other, dup := r.byURN[c.URN()]; dup {
			return nil, fmt.Errorf("corpus %q: urn %s already used by %q", c.ID(), c.URN(), other)
		}
		r.byID[c.ID()] = c
		r.byURN[c.URN()] = c.ID()
		r.ids = append(r.ids, c.ID())
	}
	sort.Strings(r.ids)
	return r, nil
}

// Get returns a corpus by id.
func (r *Registry) Get(_ context.Context, id string) (domcorpus.Corpus, error) {
	c, ok := r.byID[id]
	if !ok {
		return domcorpus.Corpus{}, fmt.Errorf("corpus %q: %w", id, domain.ErrCorpusNotFound)
	}
	return c, nil
}

// FindByURN returns the corpus whose base URN equals urn.
func (r *Registry) FindByURN(ctx context.Context, urn string) (domcorpus.Corpus, error) {
	id, ok := r.byURN[urn]
	if !ok {
		return domcorpus.Corpus{}, fmt.Errorf("urn %s: %w", urn, domain.ErrCorpusNotFound)
	}
	return r.Get(ctx, id)
}

// List returns all corpora ordered by id.
func (r *Registry) List(_ context.Context) ([]domcorpus.Corpus, error) {
	out := make([]domcorpus.Corpus, len(r.ids))
	for i, id := range r.ids {
		out[i] = r.byID[id]
	}
	return out, nil
}
