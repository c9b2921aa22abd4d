package cryptoutil

import "errors"

// ErrBadLength and ErrBadPadding are sentinel causes the nip04 codec
// wraps into its own CryptoError taxonomy (spec §4.3).
var (
	ErrBadLength  = errors.New("cryptoutil: ciphertext length not a multiple of the block size")
	ErrBadPadding = errors.New("cryptoutil: invalid PKCS#7 padding")
)
