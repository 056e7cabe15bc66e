// Package httpsig implements the signed-request authentication protocol:
// an Authorization header of scheme "Signature" carrying keyId, created,
// expires, the ordered list of signed components, and an Ed25519 signature
// over the canonical signing string. Key material is resolved through a
// KeyResolver; the signature math itself is stdlib crypto/ed25519.
package httpsig

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Scheme is the Authorization scheme handled by this package.
const Scheme = "Signature"

// Authentication failure modes. All of them collapse to Anonymous at the
// caller; they are surfaced only for logging and metrics.
var (
	ErrMalformedHeader = errors.New("httpsig: malformed signature header")
	ErrNotYetValid     = errors.New("httpsig: signature not yet valid")
	ErrExpired         = errors.New("httpsig: signature expired")
	ErrWindowTooLarge  = errors.New("httpsig: validity window exceeds maximum")
	ErrBadSignature    = errors.New("httpsig: signature verification failed")
)

// KeyResolver resolves a keyId to Ed25519 verifying key material. The
// protocol uses self-describing decentralized identifiers, so no separate
// key-distribution step is needed.
type KeyResolver interface {
	Resolve(keyID string) (ed25519.PublicKey, error)
}

// Params are the parsed parameters of a Signature authorization header.
type Params struct {
	KeyID     string
	Algorithm string
	Created   int64
	Expires   int64
	Headers   []string
	Signature []byte
}

// defaultMaxWindow bounds created..expires; clients typically sign with
// ~30 second windows. Override with STRATA_SIG_MAX_WINDOW (seconds).
const defaultMaxWindow = 300 * time.Second

func maxWindow() time.Duration {
	if v := os.Getenv("STRATA_SIG_MAX_WINDOW"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultMaxWindow
}

// Authenticate validates the request's signature and returns the verified
// identity. A missing Authorization header, a non-Signature scheme, or any
// verification failure yields Anonymous; the error (when non-nil) explains
// why for logging, and is never a hard fault.
func Authenticate(r *http.Request, keys KeyResolver, now time.Time) (Identity, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return Anonymous, nil
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], Scheme) {
		return Anonymous, nil
	}

	p, err := ParseParams(parts[1])
	if err != nil {
		return Anonymous, err
	}
	if err := checkWindow(p, now); err != nil {
		return Anonymous, err
	}

	key, err := keys.Resolve(p.KeyID)
	if err != nil {
		return Anonymous, fmt.Errorf("httpsig: resolve key %q: %w", p.KeyID, err)
	}

	msg, err := SigningString(r, p)
	if err != nil {
		return Anonymous, err
	}
	if !ed25519.Verify(key, []byte(msg), p.Signature) {
		return Anonymous, ErrBadSignature
	}

	// The controller URI is the keyId without any fragment.
	controller := strings.SplitN(p.KeyID, "#", 2)[0]
	return NewIdentity(controller), nil
}

func checkWindow(p Params, now time.Time) error {
	if p.Created == 0 || p.Expires == 0 {
		return fmt.Errorf("%w: created and expires are required", ErrMalformedHeader)
	}
	if p.Expires <= p.Created {
		return fmt.Errorf("%w: expires must follow created", ErrMalformedHeader)
	}
	if time.Duration(p.Expires-p.Created)*time.Second > maxWindow() {
		return ErrWindowTooLarge
	}
	if now.Unix() < p.Created {
		return ErrNotYetValid
	}
	if now.Unix() > p.Expires {
		return ErrExpired
	}
	return nil
}

// ParseParams parses the comma-separated parameter list of a Signature
// header: keyId="...",algorithm="...",created=...,expires=...,
// headers="(created) (expires) (key-id) (request-target)",signature="...".
func ParseParams(s string) (Params, error) {
	var p Params
	seen := map[string]bool{}
	for _, field := range splitParams(s) {
		kv := strings.SplitN(field, "=", 2)
		if len(kv) != 2 {
			return Params{}, fmt.Errorf("%w: %q", ErrMalformedHeader, field)
		}
		name := strings.TrimSpace(kv[0])
		value := strings.TrimSpace(kv[1])
		if strings.HasPrefix(value, `"`) {
			if len(value) < 2 || !strings.HasSuffix(value, `"`) {
				return Params{}, fmt.Errorf("%w: unterminated quote in %q", ErrMalformedHeader, field)
			}
			value = value[1 : len(value)-1]
		}
		if seen[name] {
			return Params{}, fmt.Errorf("%w: duplicate parameter %q", ErrMalformedHeader, name)
		}
		seen[name] = true

		switch name {
		case "keyId":
			p.KeyID = value
		case "algorithm":
			p.Algorithm = value
		case "created":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return Params{}, fmt.Errorf("%w: created: %v", ErrMalformedHeader, err)
			}
			p.Created = n
		case "expires":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return Params{}, fmt.Errorf("%w: expires: %v", ErrMalformedHeader, err)
			}
			p.Expires = n
		case "headers":
			p.Headers = strings.Fields(strings.ToLower(value))
		case "signature":
			sig, err := base64.StdEncoding.DecodeString(value)
			if err != nil {
				return Params{}, fmt.Errorf("%w: signature: %v", ErrMalformedHeader, err)
			}
			p.Signature = sig
		default:
			// Unknown parameters are ignored for forward compatibility.
		}
	}

	if p.KeyID == "" || len(p.Signature) == 0 {
		return Params{}, fmt.Errorf("%w: keyId and signature are required", ErrMalformedHeader)
	}
	if p.Algorithm != "" && p.Algorithm != "ed25519" && p.Algorithm != "hs2019" {
		return Params{}, fmt.Errorf("%w: unsupported algorithm %q", ErrMalformedHeader, p.Algorithm)
	}
	for _, required := range []string{"(created)", "(expires)", "(key-id)", "(request-target)"} {
		if !contains(p.Headers, required) {
			return Params{}, fmt.Errorf("%w: %s must be signed", ErrMalformedHeader, required)
		}
	}
	return p, nil
}

// splitParams splits on commas that are not inside quoted values.
func splitParams(s string) []string {
	var out []string
	var buf strings.Builder
	quoted := false
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			buf.WriteRune(r)
		case r == ',' && !quoted:
			out = append(out, buf.String())
			buf.Reset()
		default:
			buf.WriteRune(r)
		}
	}
	if buf.Len() > 0 {
		out = append(out, buf.String())
	}
	return out
}

// SigningString reconstructs the canonical signing base from the declared
// component list, one line per component in declared order.
func SigningString(r *http.Request, p Params) (string, error) {
	lines := make([]string, 0, len(p.Headers))
	for _, h := range p.Headers {
		switch h {
		case "(created)":
			lines = append(lines, fmt.Sprintf("(created): %d", p.Created))
		case "(expires)":
			lines = append(lines, fmt.Sprintf("(expires): %d", p.Expires))
		case "(key-id)":
			lines = append(lines, "(key-id): "+p.KeyID)
		case "(request-target)":
			lines = append(lines, "(request-target): "+strings.ToLower(r.Method)+" "+r.URL.RequestURI())
		default:
			v := r.Header.Get(h)
			if v == "" {
				return "", fmt.Errorf("%w: signed header %q absent from request", ErrMalformedHeader, h)
			}
			lines = append(lines, h+": "+strings.TrimSpace(v))
		}
	}
	return strings.Join(lines, "\n"), nil
}

// Sign attaches a Signature authorization header to the request, signing the
// four mandatory pseudo-headers. Used by clients, SDK code, and tests.
func Sign(r *http.Request, keyID string, priv ed25519.PrivateKey, created, expires time.Time) error {
	p := Params{
		KeyID:     keyID,
		Algorithm: "ed25519",
		Created:   created.Unix(),
		Expires:   expires.Unix(),
		Headers:   []string{"(created)", "(expires)", "(key-id)", "(request-target)"},
	}
	msg, err := SigningString(r, p)
	if err != nil {
		return err
	}
	sig := ed25519.Sign(priv, []byte(msg))
	r.Header.Set("Authorization", fmt.Sprintf(
		`%s keyId=%q,algorithm="ed25519",created=%d,expires=%d,headers=%q,signature=%q`,
		Scheme, p.KeyID, p.Created, p.Expires, strings.Join(p.Headers, " "),
		base64.StdEncoding.EncodeToString(sig)))
	return nil
}

func contains(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}
