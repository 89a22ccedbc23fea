package cookies

import (
	"strings"
	"time"
)

// Cookie is a single backend cookie record.
type Cookie struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	Domain    string    `json:"domain"`
	Path      string    `json:"path"`
	HostOnly  bool      `json:"host_only,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Identity is the (name, domain, path) triple that uniquely identifies a cookie.
type Identity struct {
	Name   string
	Domain string
	Path   string
}

// Identity returns the identity key of the cookie.
func (c Cookie) Identity() Identity {
	return Identity{Name: c.Name, Domain: c.Domain, Path: c.Path}
}

// String renders the identity for logs and messages.
func (id Identity) String() string {
	return id.Name + "@" + id.Domain + id.Path
}

// IncludesSubdomains reports whether the domain carries a leading dot.
func (c Cookie) IncludesSubdomains() bool {
	return strings.HasPrefix(c.Domain, ".")
}

// SetRequest describes a backend set call.
type SetRequest struct {
	URL    string
	Name   string
	Value  string
	Domain string
	Path   string
}
