package httpsig

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// did:key identifiers embed the public key itself: multibase base58btc
// ('z' prefix) over a multicodec tag (0xED 0x01 for Ed25519) plus the raw
// 32-byte key.
const didKeyPrefix = "did:key:"

var ErrUnsupportedKeyID = errors.New("httpsig: unsupported keyId")

// DIDKeyResolver resolves did:key identifiers to Ed25519 public keys without
// any network round trip.
type DIDKeyResolver struct{}

func (DIDKeyResolver) Resolve(keyID string) (ed25519.PublicKey, error) {
	// A keyId may reference a verification method fragment; the key bytes
	// are the same either way.
	id := strings.SplitN(keyID, "#", 2)[0]
	if !strings.HasPrefix(id, didKeyPrefix) {
		return nil, fmt.Errorf("%w: %q is not a did:key", ErrUnsupportedKeyID, keyID)
	}
	mb := id[len(didKeyPrefix):]
	if len(mb) < 2 || mb[0] != 'z' {
		return nil, fmt.Errorf("%w: expected base58btc multibase", ErrUnsupportedKeyID)
	}
	raw, err := base58.Decode(mb[1:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedKeyID, err)
	}
	if len(raw) != 2+ed25519.PublicKeySize || raw[0] != 0xED || raw[1] != 0x01 {
		return nil, fmt.Errorf("%w: not an ed25519 multicodec key", ErrUnsupportedKeyID)
	}
	return ed25519.PublicKey(raw[2:]), nil
}

// EncodeDIDKey renders an Ed25519 public key as a did:key identifier.
func EncodeDIDKey(pub ed25519.PublicKey) string {
	raw := make([]byte, 0, 2+len(pub))
	raw = append(raw, 0xED, 0x01)
	raw = append(raw, pub...)
	return didKeyPrefix + "z" + base58.Encode(raw)
}
