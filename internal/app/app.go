// Package app is the session-scoped core the presentation layers drive.
// One App exists per session; it owns the last successfully loaded cookie
// snapshot and routes every operation through the repository and bulk
// mutator.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/artpar/cookiedesk/internal/bulk"
	"github.com/artpar/cookiedesk/internal/codec"
	"github.com/artpar/cookiedesk/internal/collab"
	"github.com/artpar/cookiedesk/internal/config"
	"github.com/artpar/cookiedesk/internal/cookies"
	"github.com/artpar/cookiedesk/internal/logging"
	"github.com/artpar/cookiedesk/internal/repository"
)

var (
	// ErrNoDomain means the active tab did not yield a hostname.
	ErrNoDomain = errors.New("cannot determine current domain")
	// ErrEmpty means the snapshot has no cookies to act on.
	ErrEmpty = errors.New("no cookies for current domain")
	// ErrAmbiguous means a name matched cookies on several domains or paths.
	ErrAmbiguous = errors.New("cookie name is ambiguous")
)

// App is the main application container with dependency injection.
type App struct {
	config    config.Config
	repo      *repository.Repository
	mutator   *bulk.Mutator
	clipboard collab.Clipboard
	confirmer collab.Confirmer
	tab       collab.Tab
	logger    logging.Logger

	mu       sync.Mutex
	snapshot []cookies.Cookie
}

// Option is a function that configures the App.
type Option func(*App)

// WithConfig sets the application configuration.
func WithConfig(cfg config.Config) Option {
	return func(a *App) {
		a.config = cfg
	}
}

// WithClipboard sets the clipboard collaborator.
func WithClipboard(c collab.Clipboard) Option {
	return func(a *App) {
		a.clipboard = c
	}
}

// WithConfirmer sets the collaborator gating destructive operations.
func WithConfirmer(c collab.Confirmer) Option {
	return func(a *App) {
		a.confirmer = c
	}
}

// WithTab sets the active-tab collaborator.
func WithTab(t collab.Tab) Option {
	return func(a *App) {
		a.tab = t
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

// New creates an App over backend. Without WithTab the configured URL is
// used as the active tab.
func New(backend cookies.Backend, opts ...Option) *App {
	a := &App{
		config:    config.Default(),
		clipboard: collab.SystemClipboard{},
		confirmer: collab.Prompt{In: os.Stdin, Out: os.Stdout},
		logger:    logging.NoOpLogger{},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.tab == nil {
		a.tab = collab.StaticTab{URL: a.config.URL}
	}

	a.repo = repository.New(backend, repository.WithLogger(a.logger))
	a.mutator = bulk.New(a.repo, a.logger)
	return a
}

// Config returns the application configuration.
func (a *App) Config() config.Config {
	return a.config
}

// Domain returns the hostname of the active tab.
func (a *App) Domain() (string, error) {
	host, err := a.tab.Hostname()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoDomain, err)
	}
	return host, nil
}

// Load lists the current domain's cookies and, on success, replaces the
// snapshot with them.
func (a *App) Load(ctx context.Context) ([]cookies.Cookie, error) {
	host, err := a.Domain()
	if err != nil {
		return nil, err
	}

	list, err := a.repo.ListForDomain(ctx, host)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.snapshot = list
	a.mu.Unlock()
	return append([]cookies.Cookie(nil), list...), nil
}

// Snapshot returns the last successfully loaded cookies.
func (a *App) Snapshot() []cookies.Cookie {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]cookies.Cookie(nil), a.snapshot...)
}

// Find returns the snapshot cookie called name. Empty domain or path match
// anything.
func (a *App) Find(name, domainName, path string) (cookies.Cookie, error) {
	var matches []cookies.Cookie
	for _, c := range a.Snapshot() {
		if c.Name != name {
			continue
		}
		if domainName != "" && c.Domain != domainName {
			continue
		}
		if path != "" && c.Path != path {
			continue
		}
		matches = append(matches, c)
	}

	switch len(matches) {
	case 0:
		return cookies.Cookie{}, fmt.Errorf("%s: %w", name, cookies.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, 0, len(matches))
		for _, c := range matches {
			ids = append(ids, c.Identity().String())
		}
		return cookies.Cookie{}, fmt.Errorf("%w: %s", ErrAmbiguous, strings.Join(ids, ", "))
	}
}

// reload refreshes the snapshot after a mutation. A failed reload keeps the
// previous snapshot and does not undo the mutation's success.
func (a *App) reload(ctx context.Context) {
	if _, err := a.Load(ctx); err != nil {
		a.logger.Warn("reload after mutation failed", "error", err)
	}
}

// Add creates name=value on the current domain at path "/".
func (a *App) Add(ctx context.Context, name, value string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: cookie name is required", cookies.ErrValidation)
	}

	host, err := a.Domain()
	if err != nil {
		return err
	}
	if err := a.repo.Set(ctx, host, "/", name, value); err != nil {
		return err
	}

	a.logger.Info("cookie added", "name", name, "domain", host)
	a.reload(ctx)
	return nil
}

// DeleteMessage is the confirmation prompt shown before deleting c.
func DeleteMessage(c cookies.Cookie) string {
	return fmt.Sprintf("Delete cookie %q?", c.Name)
}

// Delete removes c after confirmation. It reports whether the user agreed.
func (a *App) Delete(ctx context.Context, c cookies.Cookie) (bool, error) {
	if !a.confirmer.Confirm(DeleteMessage(c)) {
		return false, nil
	}
	if err := a.repo.Remove(ctx, c.Domain, c.Path, c.Name); err != nil {
		return true, err
	}

	a.logger.Info("cookie deleted", "cookie", c.Identity().String())
	a.reload(ctx)
	return true, nil
}

// ClearMessage is the confirmation prompt shown before clearing count
// cookies of host.
func ClearMessage(host string, count int) string {
	return fmt.Sprintf("Clear all %d cookies of %s?", count, host)
}

// ClearAll removes every cookie of the snapshot after confirmation.
func (a *App) ClearAll(ctx context.Context) (bulk.Result, bool, error) {
	list := a.Snapshot()
	if len(list) == 0 {
		return bulk.Result{}, false, ErrEmpty
	}
	host, err := a.Domain()
	if err != nil {
		return bulk.Result{}, false, err
	}
	if !a.confirmer.Confirm(ClearMessage(host, len(list))) {
		return bulk.Result{}, false, nil
	}

	res := a.mutator.RemoveAll(ctx, list)
	a.reload(ctx)
	return res, true, nil
}

// Import parses text and sets every parsed cookie on the current domain.
func (a *App) Import(ctx context.Context, text string) (bulk.Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return bulk.Result{}, fmt.Errorf("%w: nothing to import", cookies.ErrValidation)
	}

	batch, err := codec.ParseImport(text)
	if err != nil {
		return bulk.Result{}, err
	}
	host, err := a.Domain()
	if err != nil {
		return bulk.Result{}, err
	}

	res := a.mutator.ImportAll(ctx, host, batch)
	a.reload(ctx)
	return res, nil
}

// Delivery reports where exported text went.
type Delivery struct {
	Text string
	// Copied is false when the clipboard refused the text; the caller
	// should display Text instead.
	Copied bool
}

// Export serialises the snapshot and copies it to the clipboard.
func (a *App) Export(ctx context.Context) (Delivery, error) {
	list := a.Snapshot()
	if len(list) == 0 {
		return Delivery{}, ErrEmpty
	}
	text, err := codec.Serialize(list)
	if err != nil {
		return Delivery{}, err
	}
	return a.deliver(text), nil
}

// ExportOne copies c as a one-key JSON object.
func (a *App) ExportOne(c cookies.Cookie) (Delivery, error) {
	text, err := codec.SerializeOne(c)
	if err != nil {
		return Delivery{}, err
	}
	return a.deliver(text), nil
}

// CopyName copies the cookie's name.
func (a *App) CopyName(c cookies.Cookie) Delivery {
	return a.deliver(c.Name)
}

// CopyValue copies the cookie's value.
func (a *App) CopyValue(c cookies.Cookie) Delivery {
	return a.deliver(c.Value)
}

func (a *App) deliver(text string) Delivery {
	if err := a.clipboard.WriteText(text); err != nil {
		a.logger.Warn("clipboard write failed", "error", err)
		return Delivery{Text: text}
	}
	return Delivery{Text: text, Copied: true}
}

// Truncate shortens value for display to the configured length.
func (a *App) Truncate(value string) string {
	return truncate(value, a.config.Display.Truncate)
}

func truncate(value string, max int) string {
	if max <= 0 || utf8.RuneCountInString(value) <= max {
		return value
	}
	runes := []rune(value)
	return string(runes[:max]) + "..."
}
