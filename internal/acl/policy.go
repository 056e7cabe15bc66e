// Package acl locates the access-control resource governing a target path
// (the effective ACL discovery algorithm) and interprets its declared policy.
package acl

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/strataspace/strata-backend/internal/store"
)

// Mode is a requested access class.
type Mode string

const (
	ModeRead  Mode = "read"
	ModeWrite Mode = "write"
)

// Policy is the closed set of recognized access policies. Anything a stored
// ACL body declares that is not recognized here maps to PolicyControllerOnly;
// there is no open-ended fallback that could widen access.
type Policy int

const (
	// PolicyControllerOnly is the default: only the space controller has
	// any access. Applied when no ACL is discoverable, when the ACL body
	// is unrecognized, and when the ACL resource itself is missing.
	PolicyControllerOnly Policy = iota

	// PolicyOpenRead ("PublicCanRead") grants read to every principal,
	// including Anonymous. The controller keeps read+write as always.
	PolicyOpenRead
)

func (p Policy) String() string {
	switch p {
	case PolicyOpenRead:
		return "open-read"
	default:
		return "controller-only"
	}
}

// Grants reports whether a principal holds the requested mode under this
// policy. The controller implicitly holds read and write regardless of any
// ACL resource content.
func (p Policy) Grants(isController bool, mode Mode) bool {
	if isController {
		return true
	}
	switch p {
	case PolicyOpenRead:
		return mode == ModeRead
	case PolicyControllerOnly:
		return false
	default:
		return false
	}
}

// aclBody is the stored ACL resource representation: {"type":"PublicCanRead"}.
type aclBody struct {
	Type string `json:"type"`
}

// classify maps a declared ACL type onto the closed Policy set.
func classify(declared string) Policy {
	switch declared {
	case "PublicCanRead":
		return PolicyOpenRead
	default:
		return PolicyControllerOnly
	}
}

// Interpreter loads ACL resources and evaluates their declared policy.
type Interpreter struct {
	store store.Store
}

func NewInterpreter(st store.Store) *Interpreter {
	return &Interpreter{store: st}
}

// Evaluate returns the policy for a resolved ACL href. ok=false (no
// discoverable ACL) yields the default policy. A missing ACL resource or a
// body with no recognized type also yields the default policy: resolution
// never fails open. Only a failing store read returns an error, and the
// caller must deny on it.
func (i *Interpreter) Evaluate(ctx context.Context, href string, ok bool) (Policy, error) {
	if !ok {
		return PolicyControllerOnly, nil
	}
	body, err := i.store.Get(ctx, href)
	if errors.Is(err, store.ErrNotFound) {
		return PolicyControllerOnly, nil
	}
	if err != nil {
		return PolicyControllerOnly, err
	}
	var b aclBody
	if err := json.Unmarshal(body, &b); err != nil {
		// Malformed ACL body: fail closed to the default policy.
		return PolicyControllerOnly, nil
	}
	return classify(b.Type), nil
}
