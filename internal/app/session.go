package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/artpar/cookiedesk/internal/cookies"
)

// EditSession holds the pending state of one cookie being edited.
type EditSession struct {
	Original     cookies.Cookie
	PendingName  string
	PendingValue string
	Active       bool
}

// BeginEdit starts editing c.
func (a *App) BeginEdit(c cookies.Cookie) *EditSession {
	return &EditSession{
		Original:     c,
		PendingName:  c.Name,
		PendingValue: c.Value,
		Active:       true,
	}
}

// CancelEdit ends s and restores its pending fields from the original.
func (a *App) CancelEdit(s *EditSession) {
	s.PendingName = s.Original.Name
	s.PendingValue = s.Original.Value
	s.Active = false
}

// SaveEdit writes the pending name and value over the original cookie's
// identity. On failure the session stays active so the input can be
// corrected.
func (a *App) SaveEdit(ctx context.Context, s *EditSession) error {
	if s == nil || !s.Active {
		return fmt.Errorf("%w: no edit in progress", cookies.ErrValidation)
	}
	name := strings.TrimSpace(s.PendingName)
	if name == "" {
		return fmt.Errorf("%w: cookie name is required", cookies.ErrValidation)
	}

	if err := a.repo.Rename(ctx, s.Original.Identity(), name, s.PendingValue); err != nil {
		return err
	}

	a.logger.Info("cookie updated", "from", s.Original.Identity().String(), "name", name)
	s.Active = false
	a.reload(ctx)
	return nil
}
