// Package cryptoutil implements the secp256k1 and AES primitives the
// NIP-47 wallet bridge depends on: x-only key derivation, the NIP-04
// flavor of ECDH (raw x-coordinate, no HKDF), and BIP-340 Schnorr
// signing.
package cryptoutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// PrivKeyLen and PubKeyLen are the wire sizes used throughout the
// protocol: a 32-byte scalar and a 32-byte x-only point.
const (
	PrivKeyLen = 32
	PubKeyLen  = 32
)

// XOnlyPubkey derives the 32-byte x-only public key (hex) for a
// 32-byte private scalar (hex). This is the last 32 bytes of the
// 33-byte compressed public key.
func XOnlyPubkey(privHex string) (string, error) {
	priv, err := parsePriv(privHex)
	if err != nil {
		return "", err
	}
	compressed := priv.PubKey().SerializeCompressed()
	return hex.EncodeToString(compressed[1:]), nil
}

// SharedSecret computes the NIP-04 ECDH shared secret between a local
// private scalar and a remote x-only public key. The remote key is
// interpreted as a compressed point with an assumed 0x02 (even-y)
// leading byte, per NIP-04 as deployed; the result is the raw 32-byte
// x-coordinate of priv*pub, used directly as the AES-256 key with no
// HKDF step.
func SharedSecret(privHex, peerPubHex string) ([]byte, error) {
	priv, err := parsePriv(privHex)
	if err != nil {
		return nil, err
	}

	peerBytes, err := hex.DecodeString(peerPubHex)
	if err != nil {
		return nil, fmt.Errorf("cryptoutil: invalid peer pubkey: %w", err)
	}
	if len(peerBytes) != PubKeyLen {
		return nil, fmt.Errorf("cryptoutil: peer pubkey must be %d bytes, got %d", PubKeyLen, len(peerBytes))
	}
	compressed := append([]byte{0x02}, peerBytes...)
	peerPub, err := btcec.ParsePubKey(compressed)
	if err != nil {
		return nil, fmt.Errorf("cryptoutil: invalid peer pubkey point: %w", err)
	}

	var peerPoint, shared btcec.JacobianPoint
	peerPub.AsJacobian(&peerPoint)
	btcec.ScalarMultNonConst(&priv.Key, &peerPoint, &shared)
	shared.ToAffine()

	x := shared.X.Bytes()
	return x[:], nil
}

// Sign produces a BIP-340 Schnorr signature (hex) over a 32-byte
// message digest, using nil aux-rand (permitted by BIP-340).
func Sign(privHex string, msg []byte) (string, error) {
	priv, err := parsePriv(privHex)
	if err != nil {
		return "", err
	}
	if len(msg) != sha256.Size {
		return "", fmt.Errorf("cryptoutil: sign expects a %d-byte digest, got %d", sha256.Size, len(msg))
	}
	sig, err := schnorr.Sign(priv, msg)
	if err != nil {
		return "", fmt.Errorf("cryptoutil: schnorr sign: %w", err)
	}
	return hex.EncodeToString(sig.Serialize()), nil
}

// Verify checks a BIP-340 Schnorr signature (hex) over a 32-byte
// message digest against an x-only public key (hex). Not used on the
// dispatch hot path (the core trusts what the relay delivered); kept
// for tests and for anyone validating stored events offline.
func Verify(pubHex string, msg []byte, sigHex string) (bool, error) {
	pubBytes, err := hex.DecodeString(pubHex)
	if err != nil {
		return false, fmt.Errorf("cryptoutil: invalid pubkey: %w", err)
	}
	pub, err := schnorr.ParsePubKey(pubBytes)
	if err != nil {
		return false, fmt.Errorf("cryptoutil: invalid x-only pubkey: %w", err)
	}
	sigBytes, err := hex.DecodeString(sigHex)
	if err != nil {
		return false, fmt.Errorf("cryptoutil: invalid signature: %w", err)
	}
	sig, err := schnorr.ParseSignature(sigBytes)
	if err != nil {
		return false, fmt.Errorf("cryptoutil: invalid signature encoding: %w", err)
	}
	return sig.Verify(msg, pub), nil
}

func parsePriv(privHex string) (*btcec.PrivateKey, error) {
	b, err := hex.DecodeString(privHex)
	if err != nil {
		return nil, fmt.Errorf("cryptoutil: invalid private key: %w", err)
	}
	if len(b) != PrivKeyLen {
		return nil, fmt.Errorf("cryptoutil: private key must be %d bytes, got %d", PrivKeyLen, len(b))
	}
	priv, _ := btcec.PrivKeyFromBytes(b)
	return priv, nil
}
