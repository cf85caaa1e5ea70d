package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrServiceNotFound is the single lookup failure: the identifier has no
	// record in the registry. Callers must handle it; there is no default key.
	ErrServiceNotFound = errors.New("service not found")

	ErrInvalidServiceID = errors.New("invalid service identifier")
	ErrEmptyKey         = errors.New("empty key value")
)

// ServiceID names the external API a key grants access to ("weather", ...).
// Case-sensitive; compared byte-for-byte.
type ServiceID string

// Validate rejects malformed identifiers. Only [a-zA-Z0-9_-] is accepted.
// Called when a registry is built, never on lookup: an unknown identifier
// (including "") is a plain lookup miss, not a validation case.
func (id ServiceID) Validate() error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidServiceID)
	}
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			continue
		}
		return fmt.Errorf("%w: character %q in %q", ErrInvalidServiceID, r, string(id))
	}
	return nil
}

func (id ServiceID) String() string { return string(id) }

// KeyRecord is one registry entry: the secret plus the descriptive metadata
// the key catalog carries about the upstream provider.
type KeyRecord struct {
	Service     ServiceID
	Key         string // secret value, returned verbatim to authorized callers
	Provider    string // e.g. "OpenWeatherMap"
	Description string
}

func (r KeyRecord) Validate() error {
	if err := r.Service.Validate(); err != nil {
		return err
	}
	if r.Key == "" {
		return fmt.Errorf("%w: service %q", ErrEmptyKey, r.Service)
	}
	return nil
}

// ServiceInfo describes a service without exposing its key material.
type ServiceInfo struct {
	Service     ServiceID `json:"service"`
	Provider    string    `json:"provider"`
	Description string    `json:"description"`
	KeyLength   int       `json:"key_length"`
}

// Info derives the key-free view of a record.
func (r KeyRecord) Info() ServiceInfo {
	return ServiceInfo{
		Service:     r.Service,
		Provider:    r.Provider,
		Description: r.Description,
		KeyLength:   len(r.Key),
	}
}

// Masked renders the secret for logs and CLI output: first and last few
// characters with the middle elided. Short keys are fully masked.
func (r KeyRecord) Masked() string {
	const head, tail = 4, 4
	if len(r.Key) <= head+tail {
		return "****"
	}
	return r.Key[:head] + "..." + r.Key[len(r.Key)-tail:]
}
