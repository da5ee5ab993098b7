package order

import (
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"
)

// Type selects the dispatch flow of an order.
type Type string

const (
	TypeStandard      Type = "standard"
	TypeExpress       Type = "express"
	TypeCollaborative Type = "collaborative"
)

// ParseType maps a wire name to a Type. An empty string means standard.
func ParseType(raw string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	if t == "" {
		return TypeStandard, nil
	}
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

func (t Type) Validate() error {
	switch t {
	case TypeStandard, TypeExpress, TypeCollaborative:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("order type", fmt.Errorf("%q is not a valid order type", string(t)))
	}
}

// InitialStatus is where a freshly created order starts. Standard and
// collaborative orders open for offers right away; express orders wait in
// pending for automatic assignment.
func (t Type) InitialStatus() Status {
	if t == TypeExpress {
		return Pending
	}
	return Bidding
}
