package cookies

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunBackendTests runs the standard backend test suite against any Backend
// implementation.
func RunBackendTests(t *testing.T, newBackend func() (Backend, func())) {
	t.Run("Set", func(t *testing.T) {
		runSetTests(t, newBackend)
	})
	t.Run("GetAll", func(t *testing.T) {
		runGetAllTests(t, newBackend)
	})
	t.Run("Remove", func(t *testing.T) {
		runRemoveTests(t, newBackend)
	})
}

func runSetTests(t *testing.T, newBackend func() (Backend, func())) {
	t.Run("domain cookie gets leading dot", func(t *testing.T) {
		b, cleanup := newBackend()
		defer cleanup()
		ctx := context.Background()

		require.NoError(t, b.Set(ctx, SetRequest{URL: "https://example.com/", Name: "a", Value: "1", Domain: "example.com", Path: "/"}))

		list, err := b.GetAll(ctx, "example.com")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, ".example.com", list[0].Domain)
		assert.Equal(t, "1", list[0].Value)
	})

	t.Run("empty domain is host only", func(t *testing.T) {
		b, cleanup := newBackend()
		defer cleanup()
		ctx := context.Background()

		require.NoError(t, b.Set(ctx, SetRequest{URL: "https://www.example.com/", Name: "a", Value: "1", Path: "/"}))

		list, err := b.GetAll(ctx, "www.example.com")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "www.example.com", list[0].Domain)
	})

	t.Run("overwrites same identity", func(t *testing.T) {
		b, cleanup := newBackend()
		defer cleanup()
		ctx := context.Background()

		req := SetRequest{URL: "https://example.com/", Name: "a", Value: "1", Domain: ".example.com", Path: "/"}
		require.NoError(t, b.Set(ctx, req))
		req.Value = "2"
		require.NoError(t, b.Set(ctx, req))

		list, err := b.GetAll(ctx, "example.com")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "2", list[0].Value)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		b, cleanup := newBackend()
		defer cleanup()

		err := b.Set(context.Background(), SetRequest{URL: "https://example.com/", Name: "", Value: "1", Domain: "example.com", Path: "/"})
		assert.ErrorIs(t, err, ErrBackendRejected)
	})

	t.Run("rejects foreign domain", func(t *testing.T) {
		b, cleanup := newBackend()
		defer cleanup()

		err := b.Set(context.Background(), SetRequest{URL: "https://example.com/", Name: "a", Value: "1", Domain: "other.org", Path: "/"})
		assert.ErrorIs(t, err, ErrBackendRejected)
	})
}

func runGetAllTests(t *testing.T, newBackend func() (Backend, func())) {
	t.Run("includes subdomains", func(t *testing.T) {
		b, cleanup := newBackend()
		defer cleanup()
		ctx := context.Background()

		require.NoError(t, b.Set(ctx, SetRequest{URL: "https://example.com/", Name: "root", Value: "1", Domain: "example.com", Path: "/"}))
		require.NoError(t, b.Set(ctx, SetRequest{URL: "https://app.example.com/", Name: "app", Value: "2", Path: "/"}))
		require.NoError(t, b.Set(ctx, SetRequest{URL: "https://example.org/", Name: "org", Value: "3", Path: "/"}))

		list, err := b.GetAll(ctx, ".example.com")
		require.NoError(t, err)
		assert.Len(t, list, 2)

		list, err = b.GetAll(ctx, "app.example.com")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "app", list[0].Name)
	})

	t.Run("empty result", func(t *testing.T) {
		b, cleanup := newBackend()
		defer cleanup()

		list, err := b.GetAll(context.Background(), "nothing.test")
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func runRemoveTests(t *testing.T, newBackend func() (Backend, func())) {
	t.Run("removes by url and name", func(t *testing.T) {
		b, cleanup := newBackend()
		defer cleanup()
		ctx := context.Background()

		require.NoError(t, b.Set(ctx, SetRequest{URL: "https://example.com/", Name: "a", Value: "1", Domain: "example.com", Path: "/"}))
		require.NoError(t, b.Set(ctx, SetRequest{URL: "https://example.com/", Name: "b", Value: "2", Domain: "example.com", Path: "/"}))
		require.NoError(t, b.Remove(ctx, "https://example.com/", "a"))

		list, err := b.GetAll(ctx, "example.com")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "b", list[0].Name)
	})

	t.Run("missing cookie is not an error", func(t *testing.T) {
		b, cleanup := newBackend()
		defer cleanup()

		assert.NoError(t, b.Remove(context.Background(), "https://example.com/", "missing"))
	})
}

// MockBackend is an in-memory Backend with failure injection for tests.
type MockBackend struct {
	mu      sync.Mutex
	cookies []Cookie
	calls   []string

	// GetAllErr fails GetAll for the given filters.
	GetAllErr map[string]error
	// Reject fails Set for the given cookie names.
	Reject map[string]bool
	// RemoveErr fails Remove for the given cookie names.
	RemoveErr map[string]error
}

// NewMockBackend creates an empty MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		GetAllErr: make(map[string]error),
		Reject:    make(map[string]bool),
		RemoveErr: make(map[string]error),
	}
}

// Seed stores c as is, bypassing validation.
func (m *MockBackend) Seed(c ...Cookie) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cc := range c {
		m.put(cc)
	}
}

// Cookies returns a copy of every stored cookie.
func (m *MockBackend) Cookies() []Cookie {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Cookie(nil), m.cookies...)
}

// Calls returns the recorded operations, e.g. "set sid" or "remove sid".
func (m *MockBackend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// GetAll implements Backend.
func (m *MockBackend) GetAll(ctx context.Context, domainFilter string) ([]Cookie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, "getAll "+domainFilter)
	if err := m.GetAllErr[domainFilter]; err != nil {
		return nil, err
	}

	filter := strings.ToLower(strings.TrimPrefix(domainFilter, "."))
	var out []Cookie
	for _, c := range m.cookies {
		d := strings.TrimPrefix(c.Domain, ".")
		if filter == "" || d == filter || strings.HasSuffix(d, "."+filter) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Set implements Backend.
func (m *MockBackend) Set(ctx context.Context, req SetRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, "set "+req.Name)
	if m.Reject[req.Name] {
		return fmt.Errorf("%w: %s refused", ErrBackendRejected, req.Name)
	}
	if req.Name == "" {
		return fmt.Errorf("%w: empty name", ErrBackendRejected)
	}

	u, err := url.Parse(req.URL)
	if err != nil || u.Hostname() == "" {
		return fmt.Errorf("%w: invalid url %q", ErrBackendRejected, req.URL)
	}
	host := u.Hostname()

	path := req.Path
	if path == "" {
		path = "/"
	}

	c := Cookie{Name: req.Name, Value: req.Value, Path: path}
	domain := strings.ToLower(strings.TrimPrefix(req.Domain, "."))
	if domain == "" {
		c.Domain = host
		c.HostOnly = true
	} else {
		if host != domain && !strings.HasSuffix(host, "."+domain) {
			return fmt.Errorf("%w: domain %q does not match %q", ErrBackendRejected, req.Domain, host)
		}
		c.Domain = "." + domain
	}
	m.put(c)
	return nil
}

// Remove implements Backend.
func (m *MockBackend) Remove(ctx context.Context, rawURL, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, "remove "+name)
	if err := m.RemoveErr[name]; err != nil {
		return err
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return errors.Join(ErrBackendRejected, err)
	}
	host := u.Hostname()
	path := u.Path
	if path == "" {
		path = "/"
	}

	kept := m.cookies[:0]
	for _, c := range m.cookies {
		if c.Name == name && c.Path == path && (c.Domain == host || c.Domain == "."+host) {
			continue
		}
		kept = append(kept, c)
	}
	m.cookies = kept
	return nil
}

func (m *MockBackend) put(c Cookie) {
	for i, existing := range m.cookies {
		if existing.Identity() == c.Identity() {
			m.cookies[i] = c
			return
		}
	}
	m.cookies = append(m.cookies, c)
}

var _ Backend = (*MockBackend)(nil)
