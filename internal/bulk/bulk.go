// Package bulk applies set and remove operations across a cookie
// collection one item at a time, counting what succeeded.
package bulk

import (
	"context"

	"github.com/artpar/cookiedesk/internal/codec"
	"github.com/artpar/cookiedesk/internal/cookies"
	"github.com/artpar/cookiedesk/internal/logging"
)

// Repository is the subset of repository.Repository the mutator drives.
type Repository interface {
	Set(ctx context.Context, domain, path, name, value string) error
	Remove(ctx context.Context, domain, path, name string) error
}

// Failure records one item that did not apply.
type Failure struct {
	Name string
	Err  error
}

// Result summarises a bulk run.
type Result struct {
	Succeeded int
	Total     int
	Failures  []Failure
}

// Failed returns the number of items that did not apply.
func (r Result) Failed() int {
	return r.Total - r.Succeeded
}

// Mutator runs bulk operations against a Repository.
type Mutator struct {
	repo   Repository
	logger logging.Logger
}

// New creates a Mutator. A nil logger discards output.
func New(repo Repository, logger logging.Logger) *Mutator {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Mutator{repo: repo, logger: logger}
}

// ImportAll sets every pair of batch on domain at path "/", in batch order.
// Each call completes before the next starts and a failed item never stops
// the run.
func (m *Mutator) ImportAll(ctx context.Context, domain string, batch *codec.Batch) Result {
	pairs := batch.Pairs()
	res := Result{Total: len(pairs)}
	for _, p := range pairs {
		if err := m.repo.Set(ctx, domain, "/", p.Name, p.Value); err != nil {
			m.logger.Warn("import cookie failed", "name", p.Name, "domain", domain, "error", err)
			res.Failures = append(res.Failures, Failure{Name: p.Name, Err: err})
			continue
		}
		res.Succeeded++
	}
	m.logger.Info("import finished", "domain", domain, "succeeded", res.Succeeded, "total", res.Total)
	return res
}

// RemoveAll removes every cookie of list at its own domain and path.
func (m *Mutator) RemoveAll(ctx context.Context, list []cookies.Cookie) Result {
	res := Result{Total: len(list)}
	for _, c := range list {
		if err := m.repo.Remove(ctx, c.Domain, c.Path, c.Name); err != nil {
			m.logger.Warn("remove cookie failed", "cookie", c.Identity().String(), "error", err)
			res.Failures = append(res.Failures, Failure{Name: c.Name, Err: err})
			continue
		}
		res.Succeeded++
	}
	m.logger.Info("remove finished", "succeeded", res.Succeeded, "total", res.Total)
	return res
}
