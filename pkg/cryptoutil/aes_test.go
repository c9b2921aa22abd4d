package cryptoutil

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

func randKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	if _, err := rand.Read(k); err != nil {
		t.Fatalf("rand: %v", err)
	}
	return k
}

func TestEncryptDecryptCBCRoundTrip(t *testing.T) {
	key := randKey(t)
	plaintext := []byte("pay_invoice request payload")

	ciphertext, iv, err := EncryptCBC(key, plaintext)
	if err != nil {
		t.Fatalf("EncryptCBC: %v", err)
	}
	if len(ciphertext)%blockSize != 0 {
		t.Fatalf("ciphertext not block-aligned: %d", len(ciphertext))
	}
	if len(iv) != blockSize {
		t.Fatalf("iv wrong length: %d", len(iv))
	}

	got, err := DecryptCBC(key, iv, ciphertext)
	if err != nil {
		t.Fatalf("DecryptCBC: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round trip mismatch: got %q want %q", got, plaintext)
	}
}

func TestEncryptUsesFreshIVEachTime(t *testing.T) {
	key := randKey(t)
	_, iv1, _ := EncryptCBC(key, []byte("same plaintext"))
	_, iv2, _ := EncryptCBC(key, []byte("same plaintext"))
	if bytes.Equal(iv1, iv2) {
		t.Fatal("expected distinct random IVs across encryptions")
	}
}

func TestDecryptCBCBadLength(t *testing.T) {
	key := randKey(t)
	_, iv, _ := EncryptCBC(key, []byte("x"))
	_, err := DecryptCBC(key, iv, []byte("not a multiple of 16"))
	if !errors.Is(err, ErrBadLength) {
		t.Fatalf("expected ErrBadLength, got %v", err)
	}
}

func TestDecryptCBCBadPadding(t *testing.T) {
	key := randKey(t)
	ciphertext, iv, err := EncryptCBC(key, []byte("valid plaintext here"))
	if err != nil {
		t.Fatalf("EncryptCBC: %v", err)
	}
	// Flip the last byte of ciphertext; with overwhelming probability
	// this corrupts the padding byte the decrypter checks.
	corrupted := append([]byte{}, ciphertext...)
	corrupted[len(corrupted)-1] ^= 0xFF

	_, err = DecryptCBC(key, iv, corrupted)
	if err == nil {
		t.Fatal("expected an error decrypting corrupted ciphertext")
	}
}
