package kernel

import (
	"errors"

	"orderflow/internal/pkg/errs"
)

// Actor identifies who performs a workflow action. System actors may omit the id.
type Actor struct {
	role Role
	id   *UUID
}

// NewActor builds an actor. Every role except RoleSystem must carry an id.
func NewActor(role Role, id *UUID) (Actor, error) {
	if err := role.Validate(); err != nil {
		return Actor{}, err
	}
	if id != nil {
		if err := id.Validate(); err != nil {
			return Actor{}, err
		}
	}
	if id == nil && role != RoleSystem {
		return Actor{}, errs.NewValueIsRequiredErrorWithCause("actor id", errors.New(role.String()+" actors must be identified"))
	}
	return Actor{role: role, id: id}, nil
}

// SystemActor is the actor used by automated collaborators.
func SystemActor() Actor {
	return Actor{role: RoleSystem}
}

func (a Actor) Role() Role {
	return a.role
}

// ID returns nil for anonymous system actors.
func (a Actor) ID() *UUID {
	return a.id
}

// IDString returns the actor id or "-" when absent.
func (a Actor) IDString() string {
	if a.id == nil {
		return "-"
	}
	return a.id.String()
}

func (a Actor) Validate() error {
	return a.role.Validate()
}

// Is reports whether the actor carries the given id.
func (a Actor) Is(id UUID) bool {
	return a.id != nil && a.id.IsEqual(id)
}
