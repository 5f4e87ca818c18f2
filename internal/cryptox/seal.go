package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/json"
	"errors"

	"github.com/flklr-dev/SecureMVPLab/internal/common"
)

// ErrOpen is returned when a sealed entry fails authentication: wrong key,
// wrong additional data, or tampered bytes.
var ErrOpen = errors.New("cannot open sealed entry")

// EncryptEntry serializes entry to JSON and seals it with AES-GCM.
//
// The key must be 16, 24 or 32 bytes long. A fresh nonce is generated for
// every call. aad is authenticated but not encrypted; the same value must
// be passed to DecryptEntry. The store binds every record to its lookup
// key this way, so a row copied under another key fails to open.
//
// Example:
//
//	key := common.GenerateRandByteArray(32)
//	ciphertext, nonce, err := EncryptEntry(record, key, []byte(lookupKey))
//	if err != nil {
//	    return err
//	}
func EncryptEntry(entry any, key, aad []byte) (ciphertext, nonce []byte, err error) {
	plaintext, err := json.Marshal(entry)
	if err != nil {
		return nil, nil, err
	}
	defer common.WipeByteArray(plaintext)

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce, err = common.ReadRandBytes(aesgcm.NonceSize())
	if err != nil {
		return nil, nil, err
	}

	ciphertext = aesgcm.Seal(nil, nonce, plaintext, aad)

	return ciphertext, nonce, nil
}

// DecryptEntry opens ciphertext sealed by EncryptEntry and unmarshals the
// JSON into v. Authentication failures are reported as ErrOpen.
func DecryptEntry(ciphertext, nonce, key, aad []byte, v any) error {
	aesgcm, err := newGCM(key)
	if err != nil {
		return err
	}
	if len(nonce) != aesgcm.NonceSize() {
		return ErrOpen
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return ErrOpen
	}
	defer common.WipeByteArray(plaintext)

	return json.Unmarshal(plaintext, v)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
