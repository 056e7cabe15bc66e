package httpsig

// Identity is the outcome of request authentication: either a controller URI
// bound to a verified signature, or Anonymous. There is no partially trusted
// state; any verification failure collapses to Anonymous.
type Identity struct {
	controller string
}

// Anonymous is the identity of an unauthenticated (or failed) request.
var Anonymous = Identity{}

// NewIdentity wraps a verified controller URI.
func NewIdentity(controller string) Identity {
	return Identity{controller: controller}
}

func (i Identity) IsAnonymous() bool { return i.controller == "" }

// Controller returns the verified controller URI, or "" for Anonymous.
func (i Identity) Controller() string { return i.controller }

func (i Identity) String() string {
	if i.IsAnonymous() {
		return "anonymous"
	}
	return i.controller
}
