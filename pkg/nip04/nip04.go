// Package nip04 implements the NIP-04 payload codec used to wrap
// NIP-47 request/response content: AES-256-CBC under an ECDH shared
// secret, base64-encoded with the IV appended as a query-style suffix.
package nip04

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gudnuf/cln-nwc/pkg/cryptoutil"
)

const delimiter = "?iv="

// ErrorKind classifies why Decrypt failed, mirroring the taxonomy the
// dispatcher needs to distinguish a malformed request from a transport
// glitch.
type ErrorKind int

const (
	MalformedPayload ErrorKind = iota
	BadPadding
	BadLength
)

// CryptoError wraps an ErrorKind with the underlying cause, if any.
type CryptoError struct {
	Kind ErrorKind
	Err  error
}

func (e *CryptoError) Error() string {
	switch e.Kind {
	case MalformedPayload:
		return fmt.Sprintf("nip04: malformed payload: %v", e.Err)
	case BadPadding:
		return fmt.Sprintf("nip04: bad padding: %v", e.Err)
	case BadLength:
		return fmt.Sprintf("nip04: bad ciphertext length: %v", e.Err)
	default:
		return fmt.Sprintf("nip04: %v", e.Err)
	}
}

func (e *CryptoError) Unwrap() error { return e.Err }

func malformed(err error) *CryptoError { return &CryptoError{Kind: MalformedPayload, Err: err} }

// Encrypt derives the ECDH shared secret between selfPriv and peerPub
// and returns base64(ciphertext) + "?iv=" + base64(iv).
func Encrypt(plaintext string, selfPriv, peerPub string) (string, error) {
	shared, err := cryptoutil.SharedSecret(selfPriv, peerPub)
	if err != nil {
		return "", fmt.Errorf("nip04: encrypt: %w", err)
	}
	ciphertext, iv, err := cryptoutil.EncryptCBC(shared, []byte(plaintext))
	if err != nil {
		return "", fmt.Errorf("nip04: encrypt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext) + delimiter + base64.StdEncoding.EncodeToString(iv), nil
}

// Decrypt splits payload on the right-most "?iv=" occurrence (the
// ciphertext half may itself contain that literal substring when
// base64-decoded, though never the encoded form; splitting from the
// right is unambiguous either way for well-formed input), base64-decodes
// both halves, and AES-CBC decrypts under the ECDH shared secret.
func Decrypt(payload string, selfPriv, peerPub string) (string, error) {
	idx := strings.LastIndex(payload, delimiter)
	if idx < 0 {
		return "", malformed(errors.New("missing \"?iv=\" delimiter"))
	}
	ctB64, ivB64 := payload[:idx], payload[idx+len(delimiter):]

	ciphertext, err := base64.StdEncoding.DecodeString(ctB64)
	if err != nil {
		return "", malformed(fmt.Errorf("ciphertext not valid base64: %w", err))
	}
	iv, err := base64.StdEncoding.DecodeString(ivB64)
	if err != nil {
		return "", malformed(fmt.Errorf("iv not valid base64: %w", err))
	}

	shared, err := cryptoutil.SharedSecret(selfPriv, peerPub)
	if err != nil {
		return "", fmt.Errorf("nip04: decrypt: %w", err)
	}

	plaintext, err := cryptoutil.DecryptCBC(shared, iv, ciphertext)
	if err != nil {
		switch {
		case errors.Is(err, cryptoutil.ErrBadLength):
			return "", &CryptoError{Kind: BadLength, Err: err}
		case errors.Is(err, cryptoutil.ErrBadPadding):
			return "", &CryptoError{Kind: BadPadding, Err: err}
		default:
			return "", fmt.Errorf("nip04: decrypt: %w", err)
		}
	}
	return string(plaintext), nil
}
