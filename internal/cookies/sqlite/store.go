package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/artpar/cookiedesk/internal/cookies"
	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
	_ "modernc.org/sqlite"
)

// Store implements cookies.Backend using SQLite.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

var _ cookies.Backend = (*Store)(nil)

// New creates a new SQLite-based cookie store.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open cookie database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cookie database: %w", err)
	}

	return store, nil
}

// NewInMemory creates a new in-memory SQLite store (useful for testing).
func NewInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// Every pooled connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables and indexes.
func (s *Store) initialize() error {
	schema := `
		CREATE TABLE IF NOT EXISTS cookies (
			id TEXT PRIMARY KEY,
			domain TEXT NOT NULL,
			path TEXT NOT NULL,
			name TEXT NOT NULL,
			value TEXT NOT NULL,
			host_only INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE(domain, path, name)
		);

		CREATE INDEX IF NOT EXISTS idx_cookies_domain ON cookies(domain);
		CREATE INDEX IF NOT EXISTS idx_cookies_domain_path ON cookies(domain, path);
	`

	_, err := s.db.Exec(schema)
	return err
}

// GetAll returns cookies whose domain equals the filter or is one of its
// subdomains. An empty filter returns every cookie.
func (s *Store) GetAll(ctx context.Context, domainFilter string) ([]cookies.Cookie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, cookies.ErrStoreClosed
	}

	query := "SELECT id, domain, path, name, value, host_only, created_at, updated_at FROM cookies"
	var args []interface{}

	filter := normalizeDomain(domainFilter)
	if filter != "" {
		query += ` WHERE ltrim(domain, '.') = ?
			OR (length(ltrim(domain, '.')) > length(?) AND substr(ltrim(domain, '.'), -length(?) - 1) = '.' || ?)`
		args = append(args, filter, filter, filter, filter)
	}
	query += " ORDER BY domain, path, name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCookies(rows)
}

// Set stores or replaces a cookie. A non-empty domain produces a domain
// cookie stored with a leading dot; an empty domain produces a host-only
// cookie for the URL's host.
func (s *Store) Set(ctx context.Context, req cookies.SetRequest) error {
	c, err := resolve(req)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return cookies.ErrStoreClosed
	}

	now := time.Now()
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO cookies
		(id, domain, path, name, value, host_only, created_at, updated_at)
		VALUES (
			COALESCE((SELECT id FROM cookies WHERE domain = ? AND path = ? AND name = ?), ?),
			?, ?, ?, ?, ?,
			COALESCE((SELECT created_at FROM cookies WHERE domain = ? AND path = ? AND name = ?), ?),
			?
		)
	`,
		c.Domain, c.Path, c.Name, uuid.New().String(),
		c.Domain, c.Path, c.Name, c.Value, boolToInt(c.HostOnly),
		c.Domain, c.Path, c.Name, now,
		now,
	)
	return err
}

// Remove deletes the cookie with the given name stored for the URL's host
// and path. Missing cookies are ignored.
func (s *Store) Remove(ctx context.Context, rawURL, name string) error {
	u, err := parseURL(rawURL)
	if err != nil {
		return err
	}
	host := strings.ToLower(u.Hostname())
	path := u.Path
	if path == "" {
		path = "/"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return cookies.ErrStoreClosed
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM cookies WHERE name = ? AND path = ? AND (domain = ? OR domain = ?)
	`, name, path, host, "."+host)
	return err
}

// Close closes the store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

// resolve validates a set request the way a browser cookie store does and
// returns the record to persist.
func resolve(req cookies.SetRequest) (cookies.Cookie, error) {
	u, err := parseURL(req.URL)
	if err != nil {
		return cookies.Cookie{}, err
	}
	host := strings.ToLower(u.Hostname())

	if err := validateName(req.Name); err != nil {
		return cookies.Cookie{}, err
	}
	if strings.ContainsAny(req.Value, ";") || hasControl(req.Value) {
		return cookies.Cookie{}, fmt.Errorf("%w: invalid value for %q", cookies.ErrBackendRejected, req.Name)
	}

	path := req.Path
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		return cookies.Cookie{}, fmt.Errorf("%w: path %q must start with /", cookies.ErrBackendRejected, path)
	}

	c := cookies.Cookie{Name: req.Name, Value: req.Value, Path: path}

	domain := normalizeDomain(req.Domain)
	switch {
	case domain == "":
		c.Domain = host
		c.HostOnly = true
	case net.ParseIP(host) != nil:
		if domain != host {
			return cookies.Cookie{}, fmt.Errorf("%w: domain %q does not match %q", cookies.ErrBackendRejected, req.Domain, host)
		}
		c.Domain = host
		c.HostOnly = true
	default:
		if host != domain && !strings.HasSuffix(host, "."+domain) {
			return cookies.Cookie{}, fmt.Errorf("%w: domain %q does not match %q", cookies.ErrBackendRejected, req.Domain, host)
		}
		if suffix, icann := publicsuffix.PublicSuffix(domain); icann && suffix == domain {
			return cookies.Cookie{}, fmt.Errorf("%w: domain %q is a public suffix", cookies.ErrBackendRejected, req.Domain)
		}
		c.Domain = "." + domain
	}

	return c, nil
}

func parseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cookies.ErrBackendRejected, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: invalid url %q", cookies.ErrBackendRejected, raw)
	}
	return u, nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", cookies.ErrBackendRejected)
	}
	if strings.ContainsAny(name, "=; \t") || hasControl(name) {
		return fmt.Errorf("%w: invalid name %q", cookies.ErrBackendRejected, name)
	}
	return nil
}

func hasControl(s string) bool {
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return true
		}
	}
	return false
}

func normalizeDomain(d string) string {
	d = strings.TrimSpace(d)
	d = strings.TrimPrefix(d, ".")
	return strings.ToLower(d)
}

// Helper functions

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func scanCookies(rows *sql.Rows) ([]cookies.Cookie, error) {
	var result []cookies.Cookie
	for rows.Next() {
		var c cookies.Cookie
		var hostOnly int
		if err := rows.Scan(
			&c.ID, &c.Domain, &c.Path, &c.Name, &c.Value,
			&hostOnly, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		c.HostOnly = hostOnly != 0
		result = append(result, c)
	}
	return result, rows.Err()
}
