// Package engine renders authorization decisions. It is the single entry
// point composing effective ACL discovery, policy interpretation, and the
// space's controller record. Stateless and safe for concurrent use; every
// decision is computed from complete data or not at all.
package engine

import (
	"context"
	"net/http"

	database "github.com/strataspace/strata-backend/internal"
	"github.com/strataspace/strata-backend/internal/acl"
	"github.com/strataspace/strata-backend/internal/httpsig"
)

// Decision is the terminal outcome for a request. There are no partial or
// soft-deny states.
type Decision struct {
	Allow  bool
	Reason string
}

// Engine decides whether a verified identity may perform a method on a
// target path. Collaborators are injected; the engine holds no globals and
// performs no writes.
type Engine struct {
	resolver    *acl.Resolver
	interpreter *acl.Interpreter
}

func New(resolver *acl.Resolver, interpreter *acl.Interpreter) *Engine {
	return &Engine{resolver: resolver, interpreter: interpreter}
}

// ModeForMethod maps an HTTP method to the requested access mode. Unknown
// methods require write: fail closed.
func ModeForMethod(method string) acl.Mode {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return acl.ModeRead
	default:
		return acl.ModeWrite
	}
}

// Decide evaluates one request. The controller identity always passes,
// independent of ACL content. Otherwise the effective ACL (or the default
// controller-only policy) determines the outcome. A resolution failure
// returns a denial together with the error; the caller must treat it as a
// hard fault, not an ordinary denial.
func (e *Engine) Decide(ctx context.Context, sp database.Space, method, target string, id httpsig.Identity) (Decision, error) {
	mode := ModeForMethod(method)

	if !id.IsAnonymous() && id.Controller() == sp.Controller {
		return Decision{Allow: true, Reason: "controller"}, nil
	}

	href, ok, err := e.resolver.EffectiveACL(ctx, sp, target)
	if err != nil {
		return Decision{Reason: "resolution failure"}, err
	}
	policy, err := e.interpreter.Evaluate(ctx, href, ok)
	if err != nil {
		return Decision{Reason: "resolution failure"}, err
	}

	if policy.Grants(false, mode) {
		return Decision{Allow: true, Reason: policy.String()}, nil
	}
	if id.IsAnonymous() {
		return Decision{Reason: "anonymous denied by " + policy.String()}, nil
	}
	return Decision{Reason: "identity denied by " + policy.String()}, nil
}
