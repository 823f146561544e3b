// Package wallet manages the private key file a node or a wallet signs with.
package wallet

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// Initialize creates a new private key at the specified path when no key
// exists there yet. An existing key is never overwritten. It reports whether
// a key was created.
func Initialize(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return false, nil

	case !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("stat key file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return false, fmt.Errorf("create key folder: %w", err)
	}

	pk, err := crypto.GenerateKey()
	if err != nil {
		return false, fmt.Errorf("generate key: %w", err)
	}

	if err := crypto.SaveECDSA(path, pk); err != nil {
		return false, fmt.Errorf("save key: %w", err)
	}

	return true, nil
}

// Load reads the private key stored at the path and returns it hex encoded.
func Load(path string) (string, error) {
	pk, err := crypto.LoadECDSA(path)
	if err != nil {
		return "", fmt.Errorf("load key: %w", err)
	}

	return signature.EncodePrivateKey(pk), nil
}

// PublicKey derives the public key, which doubles as the address, from the
// private key stored at the path.
func PublicKey(path string) (string, error) {
	privateKey, err := Load(path)
	if err != nil {
		return "", err
	}

	return signature.PublicKey(privateKey)
}
