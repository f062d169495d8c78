package service

import (
	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
)

// Actor is the authenticated identity a mutating call is attributed to.
type Actor struct {
	ID       uuid.UUID
	Username string
	IsAdmin  bool
}

func ActorFromUser(u *model.User) Actor {
	return Actor{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}

func (a Actor) audit() string {
	return a.ID.String()
}
