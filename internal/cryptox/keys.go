package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/flklr-dev/SecureMVPLab/internal/common"
	"golang.org/x/crypto/hkdf"
)

// DeviceKeyLength is the size of the on-device master key.
const DeviceKeyLength = 32

// HKDF info labels for the subkeys of the device key.
const (
	purposeRecord = "securemvp/record-key/v1"
	purposeIndex  = "securemvp/index-key/v1"
)

var ErrInvalidDeviceKey = errors.New("invalid device key")

// StoreKeys are the subkeys the credential store works with. RecordKey
// seals rows with AES-256-GCM and IndexKey computes blind lookup keys.
type StoreKeys struct {
	RecordKey []byte
	IndexKey  []byte
}

// Wipe zeroes both subkeys.
func (k *StoreKeys) Wipe() {
	common.WipeByteArray(k.RecordKey)
	common.WipeByteArray(k.IndexKey)
}

// DeriveStoreKeys expands the device key into independent subkeys with
// HKDF-SHA256.
func DeriveStoreKeys(deviceKey []byte) (*StoreKeys, error) {
	if len(deviceKey) != DeviceKeyLength {
		return nil, fmt.Errorf("%w: got %d bytes, need %d", ErrInvalidDeviceKey, len(deviceKey), DeviceKeyLength)
	}
	rk, err := deriveSubkey(deviceKey, purposeRecord)
	if err != nil {
		return nil, err
	}
	ik, err := deriveSubkey(deviceKey, purposeIndex)
	if err != nil {
		return nil, err
	}
	return &StoreKeys{RecordKey: rk, IndexKey: ik}, nil
}

func deriveSubkey(master []byte, purpose string) ([]byte, error) {
	out := make([]byte, 32)
	r := hkdf.New(sha256.New, master, nil, []byte(purpose))
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("derive %s: %w", purpose, err)
	}
	return out, nil
}

// LookupKey returns the hex HMAC-SHA256 of identity under indexKey. It is
// stable for a given key, so rows can be found without storing the
// identity in clear.
func LookupKey(indexKey []byte, identity string) string {
	mac := hmac.New(sha256.New, indexKey)
	mac.Write([]byte(identity))
	return hex.EncodeToString(mac.Sum(nil))
}
