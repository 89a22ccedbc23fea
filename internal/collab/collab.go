// Package collab holds the collaborators the cookie core depends on but
// does not own: the clipboard, the confirmation prompt and the active tab.
package collab

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/artpar/cookiedesk/internal/domain"
)

// ErrNoTab is returned when no active tab URL is known.
var ErrNoTab = errors.New("no active tab")

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	WriteText(text string) error
}

// Confirmer gates destructive operations.
type Confirmer interface {
	Confirm(message string) bool
}

// Tab supplies the hostname of the page being managed.
type Tab interface {
	Hostname() (string, error)
}

// SystemClipboard uses the OS clipboard.
type SystemClipboard struct{}

// WriteText implements Clipboard.
func (SystemClipboard) WriteText(text string) error {
	if clipboard.Unsupported {
		return errors.New("clipboard unsupported on this system")
	}
	return clipboard.WriteAll(text)
}

// ClipboardFunc adapts a function to Clipboard.
type ClipboardFunc func(text string) error

// WriteText implements Clipboard.
func (f ClipboardFunc) WriteText(text string) error {
	return f(text)
}

// AlwaysConfirm approves every prompt. Used for --yes and by callers that
// already asked the user.
type AlwaysConfirm struct{}

// Confirm implements Confirmer.
func (AlwaysConfirm) Confirm(string) bool { return true }

// Prompt asks on Out and reads a y/N answer from In.
type Prompt struct {
	In  io.Reader
	Out io.Writer
}

// Confirm implements Confirmer. Anything but y or yes declines.
func (p Prompt) Confirm(message string) bool {
	fmt.Fprintf(p.Out, "%s [y/N]: ", message)
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// StaticTab is a Tab backed by a fixed page URL.
type StaticTab struct {
	URL string
}

// Hostname implements Tab.
func (t StaticTab) Hostname() (string, error) {
	if strings.TrimSpace(t.URL) == "" {
		return "", ErrNoTab
	}
	host, err := domain.HostnameOf(t.URL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoTab, err)
	}
	return host, nil
}
