package cryptoutil

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

const blockSize = aes.BlockSize // 16

// EncryptCBC pads data with PKCS#7 to the 16-byte block boundary,
// generates a random 16-byte IV, and encrypts with AES-256-CBC. key
// must be 32 bytes (the raw NIP-04 ECDH shared secret).
func EncryptCBC(key, plaintext []byte) (ciphertext, iv []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, fmt.Errorf("cryptoutil: aes key: %w", err)
	}

	padded := pkcs7Pad(plaintext, blockSize)

	iv = make([]byte, blockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, nil, fmt.Errorf("cryptoutil: iv: %w", err)
	}

	ciphertext = make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	return ciphertext, iv, nil
}

// DecryptCBC decrypts AES-256-CBC ciphertext and strips PKCS#7
// padding. Returns BadLength if ciphertext isn't a multiple of the
// block size, BadPadding if the trailing padding is malformed.
func DecryptCBC(key, iv, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%blockSize != 0 {
		return nil, ErrBadLength
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptoutil: aes key: %w", err)
	}
	if len(iv) != blockSize {
		return nil, ErrBadLength
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)

	return pkcs7Unpad(plain, blockSize)
}

func pkcs7Pad(data []byte, size int) []byte {
	padLen := size - len(data)%size
	padding := bytes.Repeat([]byte{byte(padLen)}, padLen)
	return append(append([]byte{}, data...), padding...)
}

func pkcs7Unpad(data []byte, size int) ([]byte, error) {
	n := len(data)
	if n == 0 || n%size != 0 {
		return nil, ErrBadLength
	}
	padLen := int(data[n-1])
	if padLen == 0 || padLen > size || padLen > n {
		return nil, ErrBadPadding
	}
	for _, b := range data[n-padLen:] {
		if int(b) != padLen {
			return nil, ErrBadPadding
		}
	}
	return data[:n-padLen], nil
}
