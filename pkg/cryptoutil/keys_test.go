package cryptoutil

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func randPrivHex(t *testing.T) string {
	t.Helper()
	b := make([]byte, PrivKeyLen)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand: %v", err)
	}
	return hex.EncodeToString(b)
}

func TestXOnlyPubkeyLength(t *testing.T) {
	priv := randPrivHex(t)
	pub, err := XOnlyPubkey(priv)
	if err != nil {
		t.Fatalf("XOnlyPubkey: %v", err)
	}
	b, err := hex.DecodeString(pub)
	if err != nil {
		t.Fatalf("pubkey not hex: %v", err)
	}
	if len(b) != PubKeyLen {
		t.Fatalf("expected %d-byte pubkey, got %d", PubKeyLen, len(b))
	}
}

func TestSharedSecretIsSymmetric(t *testing.T) {
	aPriv := randPrivHex(t)
	bPriv := randPrivHex(t)

	aPub, err := XOnlyPubkey(aPriv)
	if err != nil {
		t.Fatalf("XOnlyPubkey(a): %v", err)
	}
	bPub, err := XOnlyPubkey(bPriv)
	if err != nil {
		t.Fatalf("XOnlyPubkey(b): %v", err)
	}

	secretFromA, err := SharedSecret(aPriv, bPub)
	if err != nil {
		t.Fatalf("SharedSecret(a,bPub): %v", err)
	}
	secretFromB, err := SharedSecret(bPriv, aPub)
	if err != nil {
		t.Fatalf("SharedSecret(b,aPub): %v", err)
	}

	if hex.EncodeToString(secretFromA) != hex.EncodeToString(secretFromB) {
		t.Fatalf("ECDH shared secrets differ: %x != %x", secretFromA, secretFromB)
	}
	if len(secretFromA) != 32 {
		t.Fatalf("expected 32-byte shared secret, got %d", len(secretFromA))
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	priv := randPrivHex(t)
	pub, err := XOnlyPubkey(priv)
	if err != nil {
		t.Fatalf("XOnlyPubkey: %v", err)
	}

	digest := sha256.Sum256([]byte("hello nwc"))
	sig, err := Sign(priv, digest[:])
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	ok, err := Verify(pub, digest[:], sig)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("expected signature to verify")
	}

	otherDigest := sha256.Sum256([]byte("tampered"))
	ok, err = Verify(pub, otherDigest[:], sig)
	if err != nil {
		t.Fatalf("Verify(tampered): %v", err)
	}
	if ok {
		t.Fatal("expected signature over a different digest to fail verification")
	}
}
