// Package keystore keeps the device key that encrypts the local credential
// store. The key lives in its own file, readable by the owner only, and is
// created on first use.
package keystore

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/flklr-dev/SecureMVPLab/internal/common"
	"github.com/flklr-dev/SecureMVPLab/internal/cryptox"
	"github.com/flklr-dev/SecureMVPLab/internal/filex"
)

const keyFileMode os.FileMode = 0o600

var (
	ErrInvalidKeyFile      = errors.New("invalid device key file")
	ErrInsecurePermissions = errors.New("device key file is accessible by other users")
)

// LoadOrCreate reads the hex-encoded device key at path, generating and
// writing a new one if the file does not exist yet. The second return value
// reports whether a key was created.
func LoadOrCreate(path string) ([]byte, bool, error) {
	key, err := Load(path)
	if err == nil {
		return key, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, false, err
	}

	key, err = common.ReadRandBytes(cryptox.DeviceKeyLength)
	if err != nil {
		return nil, false, fmt.Errorf("generate device key: %w", err)
	}
	if err := filex.WriteFileAtomic(path, []byte(hex.EncodeToString(key)), keyFileMode); err != nil {
		common.WipeByteArray(key)
		return nil, false, fmt.Errorf("write device key: %w", err)
	}
	return key, true, nil
}

// Load reads an existing device key.
func Load(path string) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if runtime.GOOS != "windows" && fi.Mode().Perm()&0o077 != 0 {
		return nil, fmt.Errorf("%w: %s has mode %o", ErrInsecurePermissions, path, fi.Mode().Perm())
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(raw)

	key, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFile, err)
	}
	if len(key) != cryptox.DeviceKeyLength {
		return nil, fmt.Errorf("%w: got %d bytes, need %d", ErrInvalidKeyFile, len(key), cryptox.DeviceKeyLength)
	}
	return key, nil
}

// Remove deletes the key file. Data sealed under the key becomes unreadable.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
