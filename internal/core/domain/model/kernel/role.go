package kernel

import (
	"fmt"
	"strings"

	"orderflow/internal/pkg/errs"
)

// Role is the capacity in which an actor triggers a workflow action.
type Role string

const (
	RoleBuyer        Role = "buyer"
	RoleManufacturer Role = "manufacturer"
	RoleAdmin        Role = "admin"
	// RoleSystem is used by automated collaborators such as the payment webhook.
	RoleSystem Role = "system"
)

// ParseRole accepts the lowercase role names, ignoring surrounding whitespace and case.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if err := r.Validate(); err != nil {
		return "", err
	}
	return r, nil
}

func (r Role) Validate() error {
	switch r {
	case RoleBuyer, RoleManufacturer, RoleAdmin, RoleSystem:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", string(r)))
	}
}

func (r Role) String() string {
	return string(r)
}

// RoleNames renders a role set for error messages.
func RoleNames(roles []Role) []string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.String())
	}
	return names
}
