package utils

import (
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	t.Setenv("STRATA_JWT_SECRET", "test-secret")

	tok, err := GenerateSessionToken("did:key:zController", 5*time.Minute)
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	sub, err := ParseSessionToken(tok)
	if err != nil {
		t.Fatalf("ParseSessionToken: %v", err)
	}
	if sub != "did:key:zController" {
		t.Fatalf("sub = %q", sub)
	}
}

func TestParseSessionToken_WrongSecret(t *testing.T) {
	t.Setenv("STRATA_JWT_SECRET", "first-secret")
	tok, err := GenerateSessionToken("did:key:zController", time.Minute)
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}

	t.Setenv("STRATA_JWT_SECRET", "other-secret")
	if _, err := ParseSessionToken(tok); err == nil {
		t.Fatal("token signed with a different secret was accepted")
	}
}

func TestStrictModeRequiresSecret(t *testing.T) {
	t.Setenv("STRATA_JWT_SECRET", "")
	t.Setenv("STRATA_STRICT_JWT", "true")
	if _, err := GetJwtSecretBytes(); err == nil {
		t.Fatal("strict mode without a secret should fail")
	}
}
