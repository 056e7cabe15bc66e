// keygen generates client key material for signed requests: an Ed25519
// keypair printed as a did:key identifier plus the base64url private key.
// With -priv it re-derives the did:key from an existing private key instead.
package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/strataspace/strata-backend/internal/httpsig"
)

func main() {
	privIn := flag.String("priv", "", "existing base64url-encoded Ed25519 private key; derive its did:key instead of generating")
	flag.Parse()

	var pub ed25519.PublicKey
	var priv ed25519.PrivateKey
	var err error

	if *privIn != "" {
		priv, err = decodePrivate(*privIn)
		if err != nil {
			log.Fatalf("bad private key: %v", err)
		}
		pub = priv.Public().(ed25519.PublicKey)
	} else {
		pub, priv, err = ed25519.GenerateKey(rand.Reader)
		if err != nil {
			log.Fatalf("generate key: %v", err)
		}
	}

	fmt.Fprintf(os.Stdout, "did:key     %s\n", httpsig.EncodeDIDKey(pub))
	if *privIn == "" {
		fmt.Fprintf(os.Stdout, "private key %s\n", base64.RawURLEncoding.EncodeToString(priv))
	}
}

func decodePrivate(enc string) (ed25519.PrivateKey, error) {
	raw, err := base64.RawURLEncoding.DecodeString(enc)
	if err != nil {
		raw, err = base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return nil, err
		}
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("expected %d key bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}
	return ed25519.PrivateKey(raw), nil
}
