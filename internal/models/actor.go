// internal/models/actor.go
package models

import "github.com/google/uuid"

// Actor is the authenticated identity a mutating operation is attributed to.
// It is passed explicitly to every service call.
type Actor struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// IDPtr returns the actor id, or nil for an anonymous caller.
func (a *Actor) IDPtr() *uuid.UUID {
	if a == nil {
		return nil
	}
	id := a.ID
	return &id
}
