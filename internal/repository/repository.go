// Package repository is the single point of contact with the cookie
// backend. It resolves domain listings, deduplicates them by identity key
// and turns backend failures into the cookies error taxonomy.
package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/artpar/cookiedesk/internal/cookies"
	"github.com/artpar/cookiedesk/internal/domain"
	"github.com/artpar/cookiedesk/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Repository wraps a cookies.Backend.
type Repository struct {
	backend cookies.Backend
	logger  logging.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(r *Repository) {
		r.logger = l
	}
}

// New creates a Repository over backend.
func New(backend cookies.Backend, opts ...Option) *Repository {
	r := &Repository{
		backend: backend,
		logger:  logging.NoOpLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListForDomain returns the cookies of hostname and of its main domain,
// deduplicated by identity key and sorted by name.
//
// Exact-domain results precede main-domain results when deduplicating,
// regardless of which backend read finishes first. If either read fails
// no cookies are returned.
func (r *Repository) ListForDomain(ctx context.Context, hostname string) ([]cookies.Cookie, error) {
	filters := []string{hostname}
	if main := domain.MainDomainOf(hostname); main != hostname {
		filters = append(filters, main)
	}

	results := make([][]cookies.Cookie, len(filters))
	g, gctx := errgroup.WithContext(ctx)
	for i, filter := range filters {
		g.Go(func() error {
			list, err := r.backend.GetAll(gctx, filter)
			if err != nil {
				return fmt.Errorf("%w: list %s: %w", cookies.ErrBackendUnavailable, filter, err)
			}
			results[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Error("cookie listing failed", "hostname", hostname, "error", err)
		return nil, err
	}

	var merged []cookies.Cookie
	for _, list := range results {
		merged = append(merged, list...)
	}
	out := Dedupe(merged)
	slices.SortStableFunc(out, func(a, b cookies.Cookie) int {
		return strings.Compare(a.Name, b.Name)
	})

	r.logger.Debug("listed cookies", "hostname", hostname, "queried", filters, "count", len(out))
	return out, nil
}

// Dedupe drops every cookie whose identity key was already seen, keeping
// the first occurrence and the input order.
func Dedupe(list []cookies.Cookie) []cookies.Cookie {
	if len(list) == 0 {
		return nil
	}

	seen := make(map[cookies.Identity]struct{}, len(list))
	out := make([]cookies.Cookie, 0, len(list))
	for _, c := range list {
		key := c.Identity()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Get looks up a cookie by its identity key.
func (r *Repository) Get(ctx context.Context, id cookies.Identity) (cookies.Cookie, error) {
	list, err := r.backend.GetAll(ctx, id.Domain)
	if err != nil {
		return cookies.Cookie{}, fmt.Errorf("%w: get %s: %w", cookies.ErrBackendUnavailable, id, err)
	}
	for _, c := range list {
		if c.Identity() == id {
			return c, nil
		}
	}
	return cookies.Cookie{}, fmt.Errorf("%s: %w", id, cookies.ErrNotFound)
}

// Set writes name=value for domain and path.
func (r *Repository) Set(ctx context.Context, domainName, path, name, value string) error {
	err := r.backend.Set(ctx, cookies.SetRequest{
		URL:    CookieURL(domainName, path),
		Name:   name,
		Value:  value,
		Domain: domainName,
		Path:   path,
	})
	if err != nil {
		return rejected("set", name, err)
	}
	return nil
}

// Remove deletes the named cookie at domain and path. Missing cookies are
// not an error.
func (r *Repository) Remove(ctx context.Context, domainName, path, name string) error {
	if err := r.backend.Remove(ctx, CookieURL(domainName, path), name); err != nil {
		return rejected("remove", name, err)
	}
	return nil
}

// Rename replaces the cookie identified by old with newName=newValue at the
// same domain and path. When the name changes the old cookie is removed
// first; a reader can observe neither cookie between the two calls.
func (r *Repository) Rename(ctx context.Context, old cookies.Identity, newName, newValue string) error {
	if old.Name != newName {
		if err := r.Remove(ctx, old.Domain, old.Path, old.Name); err != nil {
			return err
		}
		r.logger.Debug("removed cookie before rename", "from", old.String(), "to", newName)
	}
	return r.Set(ctx, old.Domain, old.Path, newName, newValue)
}

// CookieURL builds the URL a backend call for domain and path is made
// against: https, leading dot stripped, path defaulting to "/".
func CookieURL(domainName, path string) string {
	if path == "" {
		path = "/"
	}
	return "https://" + strings.TrimPrefix(domainName, ".") + path
}

func rejected(op, name string, err error) error {
	if errors.Is(err, cookies.ErrBackendRejected) {
		return fmt.Errorf("%s %s: %w", op, name, err)
	}
	return fmt.Errorf("%w: %s %s: %w", cookies.ErrBackendRejected, op, name, err)
}
