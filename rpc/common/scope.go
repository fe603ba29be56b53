package common

import (
	"github.com/oklog/ulid/v2"
)

// Scope groups commands for bulk cancellation. The zero Scope is a valid
// scope shared by every command submitted without an explicit one.
type Scope struct {
	id ulid.ULID
}

// NewScope creates a new, unique scope
func NewScope() Scope {
	return Scope{id: ulid.Make()}
}

// IsZero reports whether s is the shared default scope
func (s Scope) IsZero() bool {
	return s.id == ulid.ULID{}
}

func (s Scope) String() string {
	if s.IsZero() {
		return "default"
	}
	return s.id.String()
}
